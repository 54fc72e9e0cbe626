package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/albilad-voice/voice-gateway/pkg/gateway/config"
)

func testConfig() config.Config {
	return config.Config{
		Addr:               ":0",
		CORSAllowedOrigins: map[string]struct{}{},
		LabibaBaseURL:      "https://chat.labibabot.com",
		HamsaBaseURL:       "https://api.tryhamsa.com/v1",
		HamsaAPIKey:        "hamsa-key",
		HamsaWSURL:         "wss://api.tryhamsa.com/v1/realtime/ws",
		LahajatiBaseURL:    "https://lahajati.ai/api/v1",
		BaderAPIKey:        "bader-key",
		LahajatiProAPIKey:  "pro-key",
		FishBaseURL:        "https://api.fish.audio/v1",
		FishAPIKey:         "fish-key",
		ChatTimeout:        15 * time.Second,
		STTTimeout:         60 * time.Second,
		TTSTimeout:         30 * time.Second,
		MaxUploadBytes:     16 << 20,
		WSHandshakeTimeout: 10 * time.Second,
		WSWriteTimeout:     10 * time.Second,
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testConfig(), logger)
}

func TestHealthAndVoicesRouted(t *testing.T) {
	h := testServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tts/voices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("voices status=%d", rec.Code)
	}
}

func TestReadyRouted(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRequestIDOnEveryResponse(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := rec.Header().Get("X-Request-ID"); !strings.HasPrefix(got, "req_") {
		t.Fatalf("X-Request-ID=%q", got)
	}
}

func TestEmptyQueryRejectedWithEnvelope(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/answers/ask", strings.NewReader(`{"query":"  "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Error struct {
			Kind      string `json:"kind"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Kind != "empty_input" {
		t.Fatalf("kind=%q", envelope.Error.Kind)
	}
	if !strings.HasPrefix(envelope.Error.RequestID, "req_") {
		t.Fatalf("request_id=%q", envelope.Error.RequestID)
	}
}

func TestUnknownTTSProviderRejectedWithoutUpstream(t *testing.T) {
	// No upstream is reachable in this test; a 400 (not 502/504) proves the
	// request never left the gateway.
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tts/synthesize",
		strings.NewReader(`{"text":"اهلا","provider":"ghost"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestMethodNotAllowedOnAPIRoutes(t *testing.T) {
	h := testServer(t).Handler()
	for _, path := range []string{"/api/answers/ask", "/api/stt/transcribe", "/api/tts/synthesize"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
	}
}

func TestDrainingLifecycle(t *testing.T) {
	s := testServer(t)
	s.SetDraining()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ws/realtime", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d while draining", rec.Code)
	}
}

func TestRealtimeSessionThroughHandlerChain(t *testing.T) {
	upgrader := websocket.Upgrader{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upstream upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, payload); err != nil {
				return
			}
		}
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.HamsaWSURL = "ws" + strings.TrimPrefix(upstream.URL, "http")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(cfg, logger).Handler())
	defer srv.Close()

	// Dialing through the full middleware chain: the upgrade must survive
	// the access-log writer wrapping.
	client, resp, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws/realtime", nil)
	if err != nil {
		t.Fatalf("dial through handler chain: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"start"}`)); err != nil {
		t.Fatalf("write text: %v", err)
	}
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, payload, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read echo: %v", err)
	}
	if messageType != websocket.TextMessage || string(payload) != `{"type":"start"}` {
		t.Fatalf("type=%d payload=%q", messageType, payload)
	}

	audio := []byte{0x00, 0x10, 0xFF}
	if err := client.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, payload, err = client.ReadMessage()
	if err != nil {
		t.Fatalf("read binary echo: %v", err)
	}
	if messageType != websocket.BinaryMessage || string(payload) != string(audio) {
		t.Fatalf("type=%d payload=%v", messageType, payload)
	}
}
