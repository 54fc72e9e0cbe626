package hamsa

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
)

// TTS exposes the "jasem" voice over the shared Hamsa client.
type TTS struct {
	Client *Client
}

var jasemRules = tts.ResponseRules{
	FallbackMediaType: "audio/wav",
}

func (t TTS) Name() string { return ttsProviderName }

func (t TTS) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) (*core.AudioResult, error) {
	speaker := opts.Speaker
	if speaker == "" {
		speaker = defaultSpeaker
	}
	dialect := opts.Dialect
	if dialect == "" {
		dialect = defaultDialect
	}
	body, err := json.Marshal(ttsPayload{
		Text:    text,
		Speaker: speaker,
		Dialect: dialect,
		Mulaw:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts payload: %w", err)
	}

	raw, resp, err := t.Client.post(ctx, ttsProviderName, "/realtime/tts", body)
	if err != nil {
		return nil, err
	}
	mediaType, err := tts.ValidateAudioResponse(ttsProviderName, resp.Header.Get("Content-Type"), raw, jasemRules)
	if err != nil {
		return nil, err
	}
	return &core.AudioResult{Audio: raw, MediaType: mediaType}, nil
}
