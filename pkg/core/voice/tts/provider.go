// Package tts defines the text-to-speech provider contract and the audio
// response validation shared by all synthesis upstreams.
package tts

import (
	"context"

	"github.com/albilad-voice/voice-gateway/pkg/core"
)

// Provider is the interface for text-to-speech upstreams. The gateway carries
// a small closed set of implementations selected by the logical provider
// identifier.
type Provider interface {
	// Name returns the provider identifier used in logs and errors.
	Name() string

	// Synthesize converts text to audio in a single upstream call.
	Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*core.AudioResult, error)
}

// SynthesizeOptions carries the provider-specific voice parameters. Each
// implementation reads only the fields its upstream understands and applies
// its own defaults for empty values.
type SynthesizeOptions struct {
	// Lahajati voices.
	VoiceID       string
	InputMode     string
	PerformanceID string
	DialectID     string

	// Hamsa voices.
	Speaker string
	Dialect string

	// Fish Audio voices.
	ReferenceID string
}
