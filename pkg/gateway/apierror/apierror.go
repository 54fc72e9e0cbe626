// Package apierror maps gateway errors to caller-visible HTTP failures.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/albilad-voice/voice-gateway/pkg/core"
)

type Envelope struct {
	Error *core.Error `json:"error"`
}

// FromError converts any error into the canonical error plus HTTP status.
// Every failure carries its kind and a human-readable detail; nothing is
// silently swallowed.
func FromError(err error, requestID string) (*core.Error, int) {
	if err == nil {
		return nil, http.StatusOK
	}

	// Canonical errors keep their kind-derived status even when the cause
	// chain ends in a context error: a classified upstream timeout is an
	// upstream failure, not a gateway timeout.
	var gwErr *core.Error
	if errors.As(err, &gwErr) && gwErr != nil {
		out := *gwErr
		out.RequestID = requestID
		return &out, statusFromKind(gwErr.Kind)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &core.Error{
			Kind:      core.KindUpstreamUnreachable,
			Message:   "upstream request timed out",
			RequestID: requestID,
		}, http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &core.Error{
			Kind:      core.KindClientDisconnected,
			Message:   "request cancelled",
			RequestID: requestID,
		}, http.StatusRequestTimeout
	}

	// Unknown errors: do not leak details by default.
	return &core.Error{
		Kind:      core.KindInternal,
		Message:   "internal error",
		RequestID: requestID,
	}, http.StatusInternalServerError
}

func statusFromKind(kind core.ErrorKind) int {
	switch kind {
	case core.KindUnknownProvider, core.KindEmptyInput, core.KindNoTranscription:
		return http.StatusBadRequest
	case core.KindUpstreamUnreachable, core.KindUpstreamNonSuccess,
		core.KindMalformedResponse, core.KindContentTypeMismatch:
		return http.StatusBadGateway
	case core.KindClientDisconnected:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
