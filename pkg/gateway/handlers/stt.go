package handlers

import (
	"io"
	"net/http"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/dispatch"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/config"
)

// TranscribeHandler handles POST /api/stt/transcribe. The upload is opaque
// audio, assumed already in a playable container; the gateway never
// transcodes.
type TranscribeHandler struct {
	Dispatcher     Dispatcher
	MaxUploadBytes int64
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (h TranscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, r, core.NewEmptyInput("audio upload is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, core.NewEmptyInput("audio upload could not be read"))
		return
	}
	if len(audio) == 0 {
		writeError(w, r, core.NewEmptyInput("audio upload must not be empty"))
		return
	}

	res, err := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Provider: dispatch.ProviderSTT,
		Audio:    audio,
		Prompt:   r.FormValue("prompt"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Text: res.Text.Text})
}

// STTDebugHandler handles GET /api/stt/debug: key presence and the upstream
// base URL, for deploy-time checks. The key itself is never exposed.
type STTDebugHandler struct {
	Config config.Config
}

func (h STTDebugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hamsa_key_present": h.Config.HamsaAPIKey != "",
		"hamsa_api":         h.Config.HamsaBaseURL,
	})
}
