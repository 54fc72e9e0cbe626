// Package dispatch routes logical provider requests to the correct upstream
// client and reconciles every outcome into one normalized result type.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
)

// Provider is the gateway-internal identifier selecting an upstream
// integration.
type Provider string

const (
	ProviderChat        Provider = "chat"
	ProviderSTT         Provider = "stt"
	ProviderTTSBader    Provider = "tts-bader"
	ProviderTTSJasem    Provider = "tts-jasem"
	ProviderTTSSara     Provider = "tts-sara"
	ProviderTTSAbdullah Provider = "tts-abdullah"
)

// TTSProviderFromVoice maps a caller-facing voice name to its logical
// provider identifier.
func TTSProviderFromVoice(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bader":
		return ProviderTTSBader, true
	case "jasem":
		return ProviderTTSJasem, true
	case "sara":
		return ProviderTTSSara, true
	case "abdullah":
		return ProviderTTSAbdullah, true
	default:
		return "", false
	}
}

// Request is one logical provider call. It is constructed per inbound call
// and discarded when the call completes; only the fields matching the
// provider's class are read.
type Request struct {
	Provider Provider

	// Chat.
	Query   string
	StoryID string

	// STT. Audio is opaque, assumed already in a playable container.
	Audio  []byte
	Prompt string

	// TTS.
	Text  string
	Voice tts.SynthesizeOptions
}

// Result holds exactly one of a text or an audio outcome.
type Result struct {
	Text  *core.TextResult
	Audio *core.AudioResult
}

// Chat is the chat upstream contract consumed by the dispatcher.
type Chat interface {
	Ask(ctx context.Context, query, storyID string) (*core.TextResult, error)
}

// Transcriber is the STT upstream contract consumed by the dispatcher.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, prompt string) (*core.TextResult, error)
}

// Timeouts are the fixed per-class upstream deadlines. STT runs longest
// because its payloads are large base64-encoded audio; chat and TTS are
// comparatively bounded.
type Timeouts struct {
	Chat time.Duration
	STT  time.Duration
	TTS  time.Duration
}

// DefaultTimeouts returns the per-class defaults: chat 15s, STT 60s, TTS 30s.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Chat: 15 * time.Second,
		STT:  60 * time.Second,
		TTS:  30 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	def := DefaultTimeouts()
	if t.Chat <= 0 {
		t.Chat = def.Chat
	}
	if t.STT <= 0 {
		t.STT = def.STT
	}
	if t.TTS <= 0 {
		t.TTS = def.TTS
	}
	return t
}

// Dispatcher maps logical provider identifiers to upstream calls. One
// synchronous call per dispatch, no retries; retry policy belongs to the
// caller.
type Dispatcher struct {
	chat     Chat
	stt      Transcriber
	voices   map[Provider]tts.Provider
	timeouts Timeouts
	logger   *slog.Logger
}

func New(chat Chat, stt Transcriber, voices map[Provider]tts.Provider, timeouts Timeouts, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		chat:     chat,
		stt:      stt,
		voices:   voices,
		timeouts: timeouts.withDefaults(),
		logger:   logger,
	}
}

// Dispatch issues exactly one upstream call for the request and returns a
// normalized result. Unknown providers and empty inputs fail before any
// network activity.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	switch req.Provider {
	case ProviderChat:
		if strings.TrimSpace(req.Query) == "" {
			return Result{}, core.NewEmptyInput("query must not be empty")
		}
		ctx, cancel := context.WithTimeout(ctx, d.timeouts.Chat)
		defer cancel()
		res, err := d.chat.Ask(ctx, req.Query, req.StoryID)
		d.logAttempt(req.Provider, start, err, "query_len", len(req.Query))
		if err != nil {
			return Result{}, err
		}
		return Result{Text: res}, nil

	case ProviderSTT:
		if len(req.Audio) == 0 {
			return Result{}, core.NewEmptyInput("audio upload must not be empty")
		}
		ctx, cancel := context.WithTimeout(ctx, d.timeouts.STT)
		defer cancel()
		res, err := d.stt.Transcribe(ctx, req.Audio, req.Prompt)
		d.logAttempt(req.Provider, start, err, "audio_bytes", len(req.Audio))
		if err != nil {
			return Result{}, err
		}
		return Result{Text: res}, nil

	default:
		voice, ok := d.voices[req.Provider]
		if !ok {
			return Result{}, core.NewUnknownProvider(string(req.Provider))
		}
		if strings.TrimSpace(req.Text) == "" {
			return Result{}, core.NewEmptyInput("text must not be empty")
		}
		ctx, cancel := context.WithTimeout(ctx, d.timeouts.TTS)
		defer cancel()
		res, err := voice.Synthesize(ctx, req.Text, req.Voice)
		d.logAttempt(req.Provider, start, err, "text_len", len(req.Text))
		if err != nil {
			return Result{}, err
		}
		return Result{Audio: res}, nil
	}
}

func (d *Dispatcher) logAttempt(provider Provider, start time.Time, err error, sizeKey string, size int) {
	attrs := []any{
		"provider", string(provider),
		sizeKey, size,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		d.logger.Warn("dispatch failed", append(attrs, "error", err)...)
		return
	}
	d.logger.Info("dispatch ok", attrs...)
}
