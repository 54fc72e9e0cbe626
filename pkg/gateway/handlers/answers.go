package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/dispatch"
)

// Dispatcher is the provider dispatch contract consumed by the handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Result, error)
}

// AnswersHandler handles POST /api/answers/ask.
type AnswersHandler struct {
	Dispatcher Dispatcher
}

type askRequest struct {
	Query   string `json:"query"`
	StoryID string `json:"storyId"`
}

type askResponse struct {
	Text string         `json:"text"`
	Raw  map[string]any `json:"raw,omitempty"`
}

func (h AnswersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, core.NewEmptyInput("request body must be valid JSON"))
		return
	}

	res, err := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Provider: dispatch.ProviderChat,
		Query:    req.Query,
		StoryID:  req.StoryID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Text: res.Text.Text, Raw: res.Text.Raw})
}
