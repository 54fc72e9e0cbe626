// Package server wires the gateway routes, providers, and middleware chain.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/albilad-voice/voice-gateway/pkg/core/dispatch"
	"github.com/albilad-voice/voice-gateway/pkg/core/providers/fishaudio"
	"github.com/albilad-voice/voice-gateway/pkg/core/providers/hamsa"
	"github.com/albilad-voice/voice-gateway/pkg/core/providers/labiba"
	"github.com/albilad-voice/voice-gateway/pkg/core/providers/lahajati"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/config"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/handlers"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/live"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/mw"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	dispatcher   *dispatch.Dispatcher
	liveSessions *live.Tracker
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	hamsaClient := hamsa.NewClient(cfg.HamsaBaseURL, cfg.HamsaAPIKey, httpClient)
	voices := map[dispatch.Provider]tts.Provider{
		dispatch.ProviderTTSBader:    lahajati.NewBader(cfg.LahajatiBaseURL, cfg.BaderAPIKey, httpClient),
		dispatch.ProviderTTSJasem:    hamsa.TTS{Client: hamsaClient},
		dispatch.ProviderTTSSara:     fishaudio.New(cfg.FishBaseURL, cfg.FishAPIKey, httpClient),
		dispatch.ProviderTTSAbdullah: lahajati.NewAbdullah(cfg.LahajatiBaseURL, cfg.LahajatiProAPIKey, httpClient),
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		dispatcher: dispatch.New(
			labiba.New(cfg.LabibaBaseURL, cfg.LabibaStoryID, httpClient),
			hamsaClient,
			voices,
			dispatch.Timeouts{Chat: cfg.ChatTimeout, STT: cfg.STTTimeout, TTS: cfg.TTSTimeout},
			logger,
		),
		liveSessions: live.NewTracker(),
	}

	logger.Info("upstream credentials loaded",
		"hamsa_key", config.Redact(cfg.HamsaAPIKey),
		"bader_key", config.Redact(cfg.BaderAPIKey),
		"lahajati_pro_key", config.Redact(cfg.LahajatiProAPIKey),
		"fish_key", config.Redact(cfg.FishAPIKey),
	)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg})

	s.mux.Handle("/api/answers/ask", handlers.AnswersHandler{Dispatcher: s.dispatcher})
	s.mux.Handle("/api/stt/transcribe", handlers.TranscribeHandler{
		Dispatcher:     s.dispatcher,
		MaxUploadBytes: s.cfg.MaxUploadBytes,
	})
	s.mux.Handle("/api/stt/debug", handlers.STTDebugHandler{Config: s.cfg})
	s.mux.Handle("/api/tts/synthesize", handlers.SynthesizeHandler{Dispatcher: s.dispatcher})
	s.mux.Handle("/api/tts/voices", handlers.VoicesHandler{})
	s.mux.Handle("/api/ws/realtime", handlers.LiveHandler{
		Config:   s.cfg,
		Logger:   s.logger,
		Sessions: s.liveSessions,
	})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// SetDraining refuses new realtime sessions ahead of shutdown.
func (s *Server) SetDraining() {
	s.liveSessions.SetDraining()
}

// WaitLiveSessions blocks until running realtime sessions drain or ctx is
// done; CancelLiveSessions force-cancels whatever remains.
func (s *Server) WaitLiveSessions(ctx context.Context) bool {
	return s.liveSessions.Wait(ctx)
}

func (s *Server) CancelLiveSessions() {
	s.liveSessions.CancelAll()
}
