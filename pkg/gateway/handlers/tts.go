package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/dispatch"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
)

// SynthesizeHandler handles POST /api/tts/synthesize.
type SynthesizeHandler struct {
	Dispatcher Dispatcher
}

type synthesizeRequest struct {
	Text          string `json:"text"`
	Provider      string `json:"provider"`
	VoiceID       string `json:"voice_id"`
	InputMode     string `json:"input_mode"`
	PerformanceID string `json:"performance_id"`
	DialectID     string `json:"dialect_id"`
	Speaker       string `json:"speaker"`
	Dialect       string `json:"dialect"`
	ReferenceID   string `json:"reference_id"`
}

func (h SynthesizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, core.NewEmptyInput("request body must be valid JSON"))
		return
	}
	if req.Provider == "" {
		req.Provider = "jasem"
	}

	provider, ok := dispatch.TTSProviderFromVoice(req.Provider)
	if !ok {
		writeError(w, r, core.NewUnknownProvider(req.Provider))
		return
	}

	res, err := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Provider: provider,
		Text:     req.Text,
		Voice: tts.SynthesizeOptions{
			VoiceID:       req.VoiceID,
			InputMode:     req.InputMode,
			PerformanceID: req.PerformanceID,
			DialectID:     req.DialectID,
			Speaker:       req.Speaker,
			Dialect:       req.Dialect,
			ReferenceID:   req.ReferenceID,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	audio := res.Audio
	w.Header().Set("Content-Type", audio.MediaType)
	w.Header().Set("Content-Disposition", "inline; filename=speech."+extensionFor(audio.MediaType))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Audio)
}

func extensionFor(mediaType string) string {
	mt := strings.ToLower(mediaType)
	switch {
	case strings.Contains(mt, "wav"):
		return "wav"
	case strings.Contains(mt, "ogg"):
		return "ogg"
	default:
		return "mp3"
	}
}

// VoicesHandler handles GET /api/tts/voices: the static voice catalog.
type VoicesHandler struct{}

func (h VoicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	provider := r.URL.Query().Get("provider")
	if provider == "" {
		provider = "bader"
	}
	if provider != "bader" {
		writeError(w, r, core.NewUnknownProvider(provider))
		return
	}

	type option struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type voice struct {
		ID                 string   `json:"id"`
		Name               string   `json:"name"`
		DialectOptions     []option `json:"dialect_options"`
		PerformanceOptions []option `json:"performance_options"`
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": provider,
		"voices": []voice{{
			ID:   "1395",
			Name: "Default Arabic Voice",
			DialectOptions: []option{
				{ID: "1", Name: "Gulf"},
				{ID: "2", Name: "Levantine"},
			},
			PerformanceOptions: []option{
				{ID: "206", Name: "Standard"},
			},
		}},
	})
}
