// Package fishaudio implements the "sara" text-to-speech voice over the Fish
// Audio API.
package fishaudio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
)

const (
	providerName       = "sara"
	defaultReferenceID = "110ec41cca6e47eabfbbc36c16f893e4"
)

// Fish Audio sometimes labels MP3 payloads as octet-stream, so the declared
// content type is ignored and the result is always exposed as audio/mpeg.
var saraRules = tts.ResponseRules{
	SkipContentTypeCheck: true,
	FallbackMediaType:    "audio/mpeg",
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: client,
	}
}

func (c *Client) Name() string { return providerName }

type ttsPayload struct {
	Text        string `json:"text"`
	ReferenceID string `json:"reference_id"`
	Format      string `json:"format"`
	MP3Bitrate  int    `json:"mp3_bitrate"`
	Normalize   bool   `json:"normalize"`
	Latency     string `json:"latency"`
}

func (c *Client) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) (*core.AudioResult, error) {
	referenceID := strings.TrimSpace(opts.ReferenceID)
	if referenceID == "" {
		referenceID = defaultReferenceID
	}
	body, err := json.Marshal(ttsPayload{
		Text:        text,
		ReferenceID: referenceID,
		Format:      "mp3",
		MP3Bitrate:  128,
		Normalize:   true,
		Latency:     "normal",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewUpstreamUnreachable(providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamUnreachable(providerName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewUpstreamNonSuccess(providerName, resp.StatusCode, raw)
	}

	mediaType, err := tts.ValidateAudioResponse(providerName, resp.Header.Get("Content-Type"), raw, saraRules)
	if err != nil {
		return nil, err
	}
	return &core.AudioResult{Audio: raw, MediaType: mediaType}, nil
}
