// Package config loads the gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// CORS allowlist; empty disables cross-origin access.
	CORSAllowedOrigins map[string]struct{}

	// Chat upstream.
	LabibaBaseURL string
	LabibaStoryID string

	// STT / jasem TTS / realtime upstream. The key is an opaque credential;
	// the gateway only knows where to place it in a request.
	HamsaBaseURL string
	HamsaAPIKey  string
	HamsaWSURL   string

	// Lahajati TTS voices.
	LahajatiBaseURL   string
	BaderAPIKey       string
	LahajatiProAPIKey string

	// Fish Audio TTS voice.
	FishBaseURL string
	FishAPIKey  string

	// Fixed per-class upstream deadlines.
	ChatTimeout time.Duration
	STTTimeout  time.Duration
	TTSTimeout  time.Duration

	MaxUploadBytes int64

	// Realtime WebSocket proxy.
	WSHandshakeTimeout time.Duration
	WSWriteTimeout     time.Duration

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("VOICE_GW_ADDR", ":8080"),
		CORSAllowedOrigins:  make(map[string]struct{}),
		LabibaBaseURL:       envOr("VOICE_GW_LABIBA_BASE_URL", "https://chat.labibabot.com"),
		LabibaStoryID:       strings.TrimSpace(os.Getenv("VOICE_GW_LABIBA_STORY_ID")),
		HamsaBaseURL:        envOr("VOICE_GW_HAMSA_BASE_URL", "https://api.tryhamsa.com/v1"),
		HamsaAPIKey:         strings.TrimSpace(os.Getenv("VOICE_GW_HAMSA_API_KEY")),
		HamsaWSURL:          envOr("VOICE_GW_HAMSA_WS_URL", "wss://api.tryhamsa.com/v1/realtime/ws"),
		LahajatiBaseURL:     envOr("VOICE_GW_LAHAJATI_BASE_URL", "https://lahajati.ai/api/v1"),
		BaderAPIKey:         strings.TrimSpace(os.Getenv("VOICE_GW_BADER_API_KEY")),
		LahajatiProAPIKey:   strings.TrimSpace(os.Getenv("VOICE_GW_LAHAJATI_PRO_API_KEY")),
		FishBaseURL:         envOr("VOICE_GW_FISH_BASE_URL", "https://api.fish.audio/v1"),
		FishAPIKey:          strings.TrimSpace(os.Getenv("VOICE_GW_FISH_API_KEY")),
		ChatTimeout:         envDurationOr("VOICE_GW_CHAT_TIMEOUT", 15*time.Second),
		STTTimeout:          envDurationOr("VOICE_GW_STT_TIMEOUT", 60*time.Second),
		TTSTimeout:          envDurationOr("VOICE_GW_TTS_TIMEOUT", 30*time.Second),
		MaxUploadBytes:      envInt64Or("VOICE_GW_MAX_UPLOAD_BYTES", 16<<20), // 16 MiB
		WSHandshakeTimeout:  envDurationOr("VOICE_GW_WS_HANDSHAKE_TIMEOUT", 10*time.Second),
		WSWriteTimeout:      envDurationOr("VOICE_GW_WS_WRITE_TIMEOUT", 10*time.Second),
		ReadHeaderTimeout:   envDurationOr("VOICE_GW_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:         envDurationOr("VOICE_GW_READ_TIMEOUT", 2*time.Minute),
		ShutdownGracePeriod: envDurationOr("VOICE_GW_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("VOICE_GW_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	for name, value := range map[string]string{
		"VOICE_GW_LABIBA_BASE_URL":   cfg.LabibaBaseURL,
		"VOICE_GW_HAMSA_BASE_URL":    cfg.HamsaBaseURL,
		"VOICE_GW_HAMSA_WS_URL":      cfg.HamsaWSURL,
		"VOICE_GW_LAHAJATI_BASE_URL": cfg.LahajatiBaseURL,
		"VOICE_GW_FISH_BASE_URL":     cfg.FishBaseURL,
	} {
		if strings.TrimSpace(value) == "" {
			return Config{}, fmt.Errorf("%s must not be empty", name)
		}
	}
	if cfg.ChatTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_CHAT_TIMEOUT must be > 0")
	}
	if cfg.STTTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_STT_TIMEOUT must be > 0")
	}
	if cfg.TTSTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_TTS_TIMEOUT must be > 0")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_MAX_UPLOAD_BYTES must be > 0")
	}
	if cfg.WSHandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_WS_HANDSHAKE_TIMEOUT must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 || cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("server timeouts must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("VOICE_GW_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

// Redact keeps a short credential prefix for logs. Keys are never logged in
// full.
func Redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 6 {
		return "***"
	}
	return secret[:6] + "…"
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
