package handlers

import (
	"net/http"

	"github.com/albilad-voice/voice-gateway/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK     bool     `json:"ok"`
		Issues []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)
	if h.Config.HamsaAPIKey == "" {
		issues = append(issues, "hamsa api key not configured")
	}
	if h.Config.BaderAPIKey == "" {
		issues = append(issues, "bader api key not configured")
	}
	if h.Config.LahajatiProAPIKey == "" {
		issues = append(issues, "lahajati pro api key not configured")
	}
	if h.Config.FishAPIKey == "" {
		issues = append(issues, "fish audio api key not configured")
	}
	if h.Config.ChatTimeout <= 0 || h.Config.STTTimeout <= 0 || h.Config.TTSTimeout <= 0 {
		issues = append(issues, "upstream timeouts must be > 0")
	}
	if h.Config.MaxUploadBytes <= 0 {
		issues = append(issues, "max upload bytes must be > 0")
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, readyResp{OK: ok, Issues: issues})
}
