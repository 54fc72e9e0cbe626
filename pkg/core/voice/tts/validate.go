package tts

import (
	"strings"

	"github.com/albilad-voice/voice-gateway/pkg/core"
)

// ResponseRules describes how a provider's synthesis responses are validated.
// Validation is purely header-based: the gateway mirrors what the upstream
// declares and never sniffs byte content.
type ResponseRules struct {
	// AllowOctetStream accepts "octet-stream" content types for upstreams
	// known to mislabel binary payloads.
	AllowOctetStream bool

	// SkipContentTypeCheck bypasses validation entirely for upstreams whose
	// declared type is unreliable; the fallback media type is used as-is.
	SkipContentTypeCheck bool

	// FallbackMediaType labels the audio when the upstream declares nothing.
	FallbackMediaType string
}

// ValidateAudioResponse decides whether a synthesis response is acceptable
// audio and returns the media type to expose to the caller. Rejections carry
// the declared type and a short body prefix for diagnosis.
func ValidateAudioResponse(provider, declaredType string, body []byte, rules ResponseRules) (string, error) {
	if rules.SkipContentTypeCheck {
		if rules.FallbackMediaType != "" {
			return rules.FallbackMediaType, nil
		}
		return declaredType, nil
	}

	ct := strings.ToLower(declaredType)

	// An upstream declaring nothing is accepted only when the provider names
	// a fallback media type for the result.
	if ct == "" {
		if rules.FallbackMediaType != "" {
			return rules.FallbackMediaType, nil
		}
		return "", core.NewContentTypeMismatch(provider, declaredType, body)
	}

	accepted := strings.Contains(ct, "audio") ||
		(rules.AllowOctetStream && strings.Contains(ct, "octet-stream"))
	if !accepted {
		return "", core.NewContentTypeMismatch(provider, declaredType, body)
	}
	return declaredType, nil
}
