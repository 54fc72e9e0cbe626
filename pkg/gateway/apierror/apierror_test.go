package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/albilad-voice/voice-gateway/pkg/core"
)

func TestFromErrorNil(t *testing.T) {
	apiErr, status := FromError(nil, "req_1")
	if apiErr != nil || status != http.StatusOK {
		t.Fatalf("got %+v status=%d", apiErr, status)
	}
}

func TestFromErrorStatusTable(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantKind   core.ErrorKind
		wantStatus int
	}{
		{"unknown provider", core.NewUnknownProvider("ghost"), core.KindUnknownProvider, http.StatusBadRequest},
		{"empty input", core.NewEmptyInput("text must not be empty"), core.KindEmptyInput, http.StatusBadRequest},
		{"no transcription", core.NewNoTranscription("hamsa", []byte(`{}`)), core.KindNoTranscription, http.StatusBadRequest},
		{"unreachable", core.NewUpstreamUnreachable("labiba", errors.New("refused")), core.KindUpstreamUnreachable, http.StatusBadGateway},
		{"non-success", core.NewUpstreamNonSuccess("bader", 503, nil), core.KindUpstreamNonSuccess, http.StatusBadGateway},
		{"malformed", core.NewMalformedResponse("labiba", errors.New("unexpected end of JSON input")), core.KindMalformedResponse, http.StatusBadGateway},
		{"content type", core.NewContentTypeMismatch("bader", "text/html", nil), core.KindContentTypeMismatch, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, core.KindUpstreamUnreachable, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, core.KindClientDisconnected, http.StatusRequestTimeout},
		{"opaque", errors.New("boom"), core.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr, status := FromError(tc.err, "req_42")
			if status != tc.wantStatus {
				t.Fatalf("status=%d, want %d", status, tc.wantStatus)
			}
			if apiErr.Kind != tc.wantKind {
				t.Fatalf("kind=%q, want %q", apiErr.Kind, tc.wantKind)
			}
			if apiErr.RequestID != "req_42" {
				t.Fatalf("request id=%q", apiErr.RequestID)
			}
		})
	}
}

func TestFromErrorWrappedGatewayError(t *testing.T) {
	inner := core.NewEmptyInput("query must not be empty")
	wrapped := fmt.Errorf("dispatch: %w", inner)
	apiErr, status := FromError(wrapped, "req_7")
	if status != http.StatusBadRequest || apiErr.Kind != core.KindEmptyInput {
		t.Fatalf("kind=%q status=%d", apiErr.Kind, status)
	}
}

func TestFromErrorDoesNotMutateOriginal(t *testing.T) {
	orig := core.NewUnknownProvider("ghost")
	_, _ = FromError(orig, "req_9")
	if orig.RequestID != "" {
		t.Fatal("original error must not be mutated with the request id")
	}
}

func TestFromErrorOpaqueDoesNotLeakMessage(t *testing.T) {
	apiErr, _ := FromError(errors.New("pq: password authentication failed"), "req_3")
	if apiErr.Message != "internal error" {
		t.Fatalf("message=%q leaks internals", apiErr.Message)
	}
}

func TestFromErrorClassifiedTimeoutKeepsKindStatus(t *testing.T) {
	err := core.NewUpstreamUnreachable("hamsa", fmt.Errorf("post stt: %w", context.DeadlineExceeded))
	apiErr, status := FromError(err, "req_5")
	if status != http.StatusBadGateway {
		t.Fatalf("status=%d, want %d", status, http.StatusBadGateway)
	}
	if apiErr.Kind != core.KindUpstreamUnreachable {
		t.Fatalf("kind=%q", apiErr.Kind)
	}
	if apiErr.Provider != "hamsa" {
		t.Fatalf("provider=%q, classified fields must survive", apiErr.Provider)
	}
}
