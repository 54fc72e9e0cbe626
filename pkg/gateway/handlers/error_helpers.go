package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/albilad-voice/voice-gateway/pkg/gateway/apierror"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/mw"
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	gwErr, status := apierror.FromError(err, reqID)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apierror.Envelope{Error: gwErr})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) bool {
	if r.Method == allowed {
		return false
	}
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return true
}
