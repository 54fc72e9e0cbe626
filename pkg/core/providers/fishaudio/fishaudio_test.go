package fishaudio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
)

func TestSynthesizePayloadAndBearerAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fish-key" {
			t.Errorf("authorization=%q", got)
		}
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		if payload["reference_id"] != "110ec41cca6e47eabfbbc36c16f893e4" {
			t.Errorf("reference_id=%v", payload["reference_id"])
		}
		if payload["format"] != "mp3" || payload["mp3_bitrate"] != float64(128) {
			t.Errorf("format=%v bitrate=%v", payload["format"], payload["mp3_bitrate"])
		}
		if payload["normalize"] != true || payload["latency"] != "normal" {
			t.Errorf("normalize=%v latency=%v", payload["normalize"], payload["latency"])
		}
		// Deliberately mislabeled; the declared type must be ignored.
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0xFF, 0xFB})
	}))
	defer srv.Close()

	c := New(srv.URL, "fish-key", srv.Client())
	if c.Name() != "sara" {
		t.Fatalf("name=%q", c.Name())
	}
	res, err := c.Synthesize(context.Background(), "اهلا", tts.SynthesizeOptions{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if res.MediaType != "audio/mpeg" {
		t.Fatalf("media type=%q, want forced audio/mpeg", res.MediaType)
	}
}

func TestSynthesizeReferenceOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		if payload["reference_id"] != "custom-ref" {
			t.Errorf("reference_id=%v", payload["reference_id"])
		}
		_, _ = w.Write([]byte{0x00})
	}))
	defer srv.Close()

	c := New(srv.URL, "k", srv.Client())
	if _, err := c.Synthesize(context.Background(), "اهلا", tts.SynthesizeOptions{ReferenceID: "custom-ref"}); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
}

func TestSynthesizeNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "payment required", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", srv.Client())
	_, err := c.Synthesize(context.Background(), "اهلا", tts.SynthesizeOptions{})
	var gwErr *core.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != core.KindUpstreamNonSuccess {
		t.Fatalf("err=%v", err)
	}
	if gwErr.Provider != "sara" {
		t.Fatalf("provider=%q", gwErr.Provider)
	}
}

func TestSynthesizeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, "k", nil)
	_, err := c.Synthesize(context.Background(), "اهلا", tts.SynthesizeOptions{})
	var gwErr *core.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != core.KindUpstreamUnreachable {
		t.Fatalf("err=%v", err)
	}
}
