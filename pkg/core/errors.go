package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorKind categorizes gateway failures.
type ErrorKind string

const (
	KindUnknownProvider     ErrorKind = "unknown_provider"
	KindEmptyInput          ErrorKind = "empty_input"
	KindUpstreamUnreachable ErrorKind = "upstream_unreachable"
	KindUpstreamNonSuccess  ErrorKind = "upstream_non_success"
	KindMalformedResponse   ErrorKind = "upstream_malformed_response"
	KindNoTranscription     ErrorKind = "no_transcription"
	KindContentTypeMismatch ErrorKind = "content_type_mismatch"
	KindClientDisconnected  ErrorKind = "client_disconnected"

	// KindInternal covers panics and errors outside the dispatch taxonomy.
	KindInternal ErrorKind = "internal"
)

// Error is the canonical gateway error. Every failure crossing the gateway
// boundary is one of these; the Kind decides the caller-visible HTTP status.
type Error struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Provider  string    `json:"provider,omitempty"`
	Status    int       `json:"status,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewUnknownProvider reports a logical provider identifier outside the known set.
func NewUnknownProvider(name string) *Error {
	return &Error{
		Kind:    KindUnknownProvider,
		Message: fmt.Sprintf("unknown provider %q", name),
	}
}

// NewEmptyInput reports a request rejected before any upstream call.
func NewEmptyInput(message string) *Error {
	return &Error{
		Kind:    KindEmptyInput,
		Message: message,
	}
}

// NewUpstreamUnreachable wraps a transport-level failure (DNS, refused
// connection, timeout) talking to the named upstream.
func NewUpstreamUnreachable(provider string, cause error) *Error {
	return &Error{
		Kind:     KindUpstreamUnreachable,
		Message:  "upstream request failed",
		Provider: provider,
		Detail:   cause.Error(),
		cause:    cause,
	}
}

// NewUpstreamNonSuccess reports a non-2xx upstream status. A snippet of the
// body is kept for diagnosis.
func NewUpstreamNonSuccess(provider string, status int, body []byte) *Error {
	return &Error{
		Kind:     KindUpstreamNonSuccess,
		Message:  fmt.Sprintf("upstream returned status %d", status),
		Provider: provider,
		Status:   status,
		Detail:   Snippet(body, 200),
	}
}

// NewMalformedResponse reports an unparsable body where parsing was required.
func NewMalformedResponse(provider string, cause error) *Error {
	return &Error{
		Kind:     KindMalformedResponse,
		Message:  "upstream response could not be parsed",
		Provider: provider,
		Detail:   cause.Error(),
		cause:    cause,
	}
}

// NewNoTranscription reports an STT response that carried no usable text.
// Silence is a hard failure for transcription, not a degraded answer.
func NewNoTranscription(provider string, rawBody []byte) *Error {
	return &Error{
		Kind:     KindNoTranscription,
		Message:  "no transcription in upstream response",
		Provider: provider,
		Detail:   Snippet(rawBody, 200),
	}
}

// NewContentTypeMismatch reports a synthesis response not recognized as audio.
func NewContentTypeMismatch(provider, declaredType string, body []byte) *Error {
	return &Error{
		Kind:     KindContentTypeMismatch,
		Message:  fmt.Sprintf("upstream returned non-audio content type %q", declaredType),
		Provider: provider,
		Detail:   Snippet(body, 200),
	}
}

// NewClientDisconnected reports the client side of a realtime session going away.
func NewClientDisconnected(cause error) *Error {
	e := &Error{
		Kind:    KindClientDisconnected,
		Message: "client disconnected",
		cause:   cause,
	}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// Snippet truncates b to at most n bytes of valid UTF-8 for log/error detail.
func Snippet(b []byte, n int) string {
	s := strings.ToValidUTF8(string(b), "")
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s + "…"
}
