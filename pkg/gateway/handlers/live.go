package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/albilad-voice/voice-gateway/pkg/gateway/config"
	"github.com/albilad-voice/voice-gateway/pkg/gateway/live"
)

// LiveHandler handles GET /api/ws/realtime: it accepts the client WebSocket,
// opens the upstream leg with the credential header, and relays the session.
type LiveHandler struct {
	Config   config.Config
	Logger   *slog.Logger
	Sessions *live.Tracker

	// Dialer overrides the upstream dialer; tests point it at a fake.
	Dialer *websocket.Dialer
}

func (h LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Sessions != nil && h.Sessions.IsDraining() {
		http.Error(w, "gateway is draining", http.StatusServiceUnavailable)
		return
	}
	if !h.originAllowed(r) {
		http.Error(w, "origin is not allowed", http.StatusForbidden)
		return
	}

	// The client channel is accepted first; only then is upstream opened.
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	clientConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sessionID := "ws_" + uuid.NewString()
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", sessionID)

	dialCtx, dialCancel := context.WithTimeout(r.Context(), h.Config.WSHandshakeTimeout)
	upstreamConn, err := live.DialUpstream(dialCtx, live.UpstreamConfig{
		URL:              h.Config.HamsaWSURL,
		APIKey:           h.Config.HamsaAPIKey,
		HandshakeTimeout: h.Config.WSHandshakeTimeout,
		Dialer:           h.Dialer,
	})
	dialCancel()
	if err != nil {
		logger.Warn("upstream dial failed", "error", err)
		// Surfaced to the client as an abrupt close with no payload.
		_ = clientConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""),
			time.Now().Add(2*time.Second))
		_ = clientConn.Close()
		return
	}

	logger.Info("realtime session started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if h.Sessions != nil {
		unregister := h.Sessions.Register(sessionID, cancel)
		defer unregister()
	}

	proxy := live.NewProxy(clientConn, upstreamConn, h.Config.WSWriteTimeout, logger)
	if err := proxy.Run(ctx); err != nil {
		logger.Warn("realtime session ended with error", "error", err)
		return
	}
	logger.Info("realtime session closed")
}

func (h LiveHandler) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if len(h.Config.CORSAllowedOrigins) == 0 {
		return false
	}
	_, ok := h.Config.CORSAllowedOrigins[origin]
	return ok
}
