// Package hamsa implements the Hamsa upstream client: speech-to-text, the
// "jasem" text-to-speech voice, and the realtime WebSocket endpoint address.
package hamsa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/normalize"
)

const (
	sttProviderName = "hamsa"
	ttsProviderName = "jasem"

	defaultSpeaker = "Jasem"
	defaultDialect = "ksa"
)

// Client calls the Hamsa HTTP API. The credential goes into the
// Authorization header as a Token scheme and is never logged in full.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: client,
	}
}

type sttPayload struct {
	AudioBase64  string `json:"audioBase64"`
	Language     string `json:"language"`
	IsEosEnabled bool   `json:"isEosEnabled"`
}

// Transcribe sends audio as base64 JSON and extracts the transcript. Audio
// bytes are passed through opaquely; the upstream handles the container
// format. An empty transcript is a hard failure: silence is a meaningful
// signal for STT, unlike a chat reply with an unexpected shape.
func (c *Client) Transcribe(ctx context.Context, audio []byte, prompt string) (*core.TextResult, error) {
	payload := sttPayload{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Language:    "ar",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal stt payload: %w", err)
	}

	raw, _, err := c.post(ctx, sttProviderName, "/realtime/stt", body)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Never lose the caller's answer: unparsable bodies degrade to text.
		return &core.TextResult{Text: string(raw)}, nil
	}
	text, ok := normalize.Transcript(doc)
	if !ok {
		return nil, core.NewNoTranscription(sttProviderName, raw)
	}
	return &core.TextResult{Text: text, Raw: doc}, nil
}

type ttsPayload struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
	Dialect string `json:"dialect"`
	Mulaw   bool   `json:"mulaw"`
}

func (c *Client) post(ctx context.Context, provider, path string, body []byte) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("build %s request: %w", provider, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, core.NewUpstreamUnreachable(provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, core.NewUpstreamUnreachable(provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, core.NewUpstreamNonSuccess(provider, resp.StatusCode, raw)
	}
	return raw, resp, nil
}
