package hamsa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/albilad-voice/voice-gateway/pkg/core"
	"github.com/albilad-voice/voice-gateway/pkg/core/voice/tts"
)

func TestTranscribeSendsBase64AndTokenAuth(t *testing.T) {
	audio := []byte{0x52, 0x49, 0x46, 0x46, 0x00, 0x01}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realtime/stt" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token secret-key" {
			t.Errorf("authorization=%q", got)
		}
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("payload not JSON: %v", err)
		}
		if payload["audioBase64"] != base64.StdEncoding.EncodeToString(audio) {
			t.Error("audio not base64 of the upload")
		}
		if payload["language"] != "ar" {
			t.Errorf("language=%v", payload["language"])
		}
		if payload["isEosEnabled"] != false {
			t.Errorf("isEosEnabled=%v", payload["isEosEnabled"])
		}
		_, _ = w.Write([]byte(`{"data":{"text":"مرحبا"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", srv.Client())
	res, err := c.Transcribe(context.Background(), audio, "")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "مرحبا" {
		t.Fatalf("text=%q", res.Text)
	}
}

func TestTranscribeEmptyTranscriptIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", srv.Client())
	_, err := c.Transcribe(context.Background(), []byte("a"), "")
	var gwErr *core.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != core.KindNoTranscription {
		t.Fatalf("err=%v", err)
	}
}

func TestTranscribeUnparsableBodyDegradesToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("transcript without json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", srv.Client())
	res, err := c.Transcribe(context.Background(), []byte("a"), "")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "transcript without json" {
		t.Fatalf("text=%q", res.Text)
	}
}

func TestTranscribeNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", srv.Client())
	_, err := c.Transcribe(context.Background(), []byte("a"), "")
	var gwErr *core.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != core.KindUpstreamNonSuccess {
		t.Fatalf("err=%v", err)
	}
	if gwErr.Provider != "hamsa" || gwErr.Status != http.StatusUnauthorized {
		t.Fatalf("provider=%q status=%d", gwErr.Provider, gwErr.Status)
	}
}

func TestJasemSynthesizeDefaultsAndFallbackMediaType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realtime/tts" {
			t.Errorf("path=%q", r.URL.Path)
		}
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		if payload["speaker"] != "Jasem" || payload["dialect"] != "ksa" {
			t.Errorf("speaker=%v dialect=%v", payload["speaker"], payload["dialect"])
		}
		if payload["mulaw"] != false {
			t.Errorf("mulaw=%v", payload["mulaw"])
		}
		// No content type declared (nil suppresses sniffing): the voice
		// falls back to audio/wav.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x52, 0x49, 0x46, 0x46})
	}))
	defer srv.Close()

	voice := TTS{Client: NewClient(srv.URL, "k", srv.Client())}
	if voice.Name() != "jasem" {
		t.Fatalf("name=%q", voice.Name())
	}
	res, err := voice.Synthesize(context.Background(), "اهلا", tts.SynthesizeOptions{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if res.MediaType != "audio/wav" {
		t.Fatalf("media type=%q", res.MediaType)
	}
	if len(res.Audio) != 4 {
		t.Fatalf("audio len=%d", len(res.Audio))
	}
}

func TestJasemSynthesizeSpeakerOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		if payload["speaker"] != "Layla" || payload["dialect"] != "egy" {
			t.Errorf("speaker=%v dialect=%v", payload["speaker"], payload["dialect"])
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte{0x00})
	}))
	defer srv.Close()

	voice := TTS{Client: NewClient(srv.URL, "k", srv.Client())}
	if _, err := voice.Synthesize(context.Background(), "اهلا", tts.SynthesizeOptions{Speaker: "Layla", Dialect: "egy"}); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
}
