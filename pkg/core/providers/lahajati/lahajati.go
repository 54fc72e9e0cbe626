// Package lahajati implements the Lahajati text-to-speech voices. Two logical
// voices share the same upstream endpoint but differ in credential scheme,
// voice parameters, and how strictly the response content type is checked.
package lahajati

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

const synthesizePath = "/text-to-speech-absolute-control"

const (
	baderDefaultVoiceID       = "1395"
	baderDefaultInputMode     = "0"
	baderDefaultPerformanceID = "206"
	baderDefaultDialectID     = "2"

	// The pro voice is pinned upstream; callers cannot override it.
	abdullahVoiceID = "4ezf4a4fd4gf4erh8ez54dfb14"
)

// Voice is one Lahajati synthesis variant.
type Voice struct {
	name       string
	baseURL    string
	authHeader string
	fixedVoice bool
	rules      tts.ResponseRules
	httpClient *http.Client
}

// NewBader returns the standard Lahajati voice. The upstream expects the raw
// key in the Authorization header and reliably declares audio content types.
func NewBader(baseURL, apiKey string, client *http.Client) *Voice {
	return &Voice{
		name:       "bader",
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: strings.TrimSpace(apiKey),
		rules:      tts.ResponseRules{FallbackMediaType: "audio/mpeg"},
		httpClient: orDefault(client),
	}
}

// NewAbdullah returns the Lahajati Pro voice. It uses Bearer auth, a pinned
// voice identifier, and may mislabel audio as octet-stream.
func NewAbdullah(baseURL, apiKey string, client *http.Client) *Voice {
	return &Voice{
		name:       "abdullah",
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Bearer " + strings.TrimSpace(apiKey),
		fixedVoice: true,
		rules: tts.ResponseRules{
			AllowOctetStream:  true,
			FallbackMediaType: "audio/mpeg",
		},
		httpClient: orDefault(client),
	}
}

func (v *Voice) Name() string { return v.name }

type synthesizePayload struct {
	Text          string `json:"text"`
	VoiceID       string `json:"id_voice"`
	InputMode     string `json:"input_mode"`
	PerformanceID string `json:"performance_id"`
	DialectID     string `json:"dialect_id"`
}

func (v *Voice) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) (*core.AudioResult, error) {
	payload := synthesizePayload{
		Text:          text,
		VoiceID:       valueOr(opts.VoiceID, baderDefaultVoiceID),
		InputMode:     valueOr(opts.InputMode, baderDefaultInputMode),
		PerformanceID: valueOr(opts.PerformanceID, baderDefaultPerformanceID),
		DialectID:     valueOr(opts.DialectID, baderDefaultDialectID),
	}
	if v.fixedVoice {
		payload.VoiceID = abdullahVoiceID
		payload.InputMode = baderDefaultInputMode
		payload.PerformanceID = baderDefaultPerformanceID
		payload.DialectID = baderDefaultDialectID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+synthesizePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesize request: %w", err)
	}
	req.Header.Set("Authorization", v.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, core.NewUpstreamUnreachable(v.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamUnreachable(v.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewUpstreamNonSuccess(v.name, resp.StatusCode, raw)
	}

	mediaType, err := tts.ValidateAudioResponse(v.name, resp.Header.Get("Content-Type"), raw, v.rules)
	if err != nil {
		return nil, err
	}
	return &core.AudioResult{Audio: raw, MediaType: mediaType}, nil
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orDefault(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{}
	}
	return client
}
