// Package normalize extracts canonical text out of variant provider response
// shapes. Extraction never fails: each function walks a deterministic fallback
// chain until some field yields a non-empty value.
package normalize

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// StripTags removes <...> markup substrings and trims whitespace. It is a
// simple tag-removal transform, not a parser: idempotent, but non-tag text
// containing angle brackets can be clipped. Known limitation.
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// ChatText extracts the reply text from a chatbot response document.
// Order: result.fulfillment[0].message (markup stripped), then top-level
// text, response, message, then the raw body verbatim. Some string is
// always returned; a chat answer is never lost to an unexpected shape.
func ChatText(doc map[string]any, rawBody string) string {
	if msg := fulfillmentMessage(doc); msg != "" {
		if text := StripTags(msg); text != "" {
			return text
		}
	}
	for _, key := range []string{"text", "response", "message"} {
		if v := stringField(doc, key); v != "" {
			return v
		}
	}
	return rawBody
}

// Transcript extracts transcribed text from an STT response document.
// Order: data.text, data.transcription, then top-level text, transcription,
// transcript. Returns false when every field is empty; the caller treats
// that as a hard failure.
func Transcript(doc map[string]any) (string, bool) {
	if data, ok := doc["data"].(map[string]any); ok {
		for _, key := range []string{"text", "transcription"} {
			if v := stringField(data, key); v != "" {
				return v, true
			}
		}
		return "", false
	}
	for _, key := range []string{"text", "transcription", "transcript"} {
		if v := stringField(doc, key); v != "" {
			return v, true
		}
	}
	return "", false
}

func fulfillmentMessage(doc map[string]any) string {
	result, ok := doc["result"].(map[string]any)
	if !ok {
		return ""
	}
	fulfillment, ok := result["fulfillment"].([]any)
	if !ok || len(fulfillment) == 0 {
		return ""
	}
	first, ok := fulfillment[0].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := first["message"].(string)
	return msg
}

func stringField(doc map[string]any, key string) string {
	v, _ := doc[key].(string)
	return strings.TrimSpace(v)
}
