package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/config"
	"github.com/nadzzz/lingua/internal/tts"
)

var mp3 = []byte{0xff, 0xfb, 0x90, 0x44, 0x00}

type fakeSpeech struct {
	status int
	body   []byte
	last   map[string]any
}

func (f *fakeSpeech) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
		http.NotFound(w, r)
		return
	}
	_ = json.NewDecoder(r.Body).Decode(&f.last)
	if f.status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "audio/mpeg")
	}
	w.WriteHeader(f.status)
	_, _ = w.Write(f.body)
}

func newTestSynth(t *testing.T, f *fakeSpeech) *Synthesizer {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "tts-1", Timeout: 5 * time.Second})
}

func TestSynthesizeSuccess(t *testing.T) {
	f := &fakeSpeech{status: http.StatusOK, body: mp3}
	s := newTestSynth(t, f)

	res, err := s.Synthesize(context.Background(), "hola", tts.SynthesizeOpts{Language: "es", Voice: "echo"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(res.Audio, mp3) || res.ContentType != "audio/mpeg" || res.Voice != "echo" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.last["model"] != "tts-1" || f.last["voice"] != "echo" || f.last["input"] != "hola" {
		t.Fatalf("unexpected request body: %v", f.last)
	}
	if f.last["response_format"] != "mp3" {
		t.Fatalf("response_format = %v", f.last["response_format"])
	}
}

func TestSynthesizeUpstreamError(t *testing.T) {
	f := &fakeSpeech{status: http.StatusTooManyRequests, body: []byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`)}
	s := newTestSynth(t, f)

	_, err := s.Synthesize(context.Background(), "hola", tts.SynthesizeOpts{Voice: "echo"})
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindUpstream || e.HTTPStatus() != http.StatusTooManyRequests {
		t.Fatalf("expected 429 UpstreamError, got %v", err)
	}
	if e.Message != "Rate limit reached" {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestSynthesizeUpstreamErrorNoMessage(t *testing.T) {
	s := newTestSynth(t, &fakeSpeech{status: http.StatusBadGateway, body: []byte(`{}`)})

	_, err := s.Synthesize(context.Background(), "hola", tts.SynthesizeOpts{Voice: "echo"})
	e, ok := apierr.As(err)
	if !ok || e.HTTPStatus() != http.StatusBadGateway || e.Message != "Error from OpenAI API" {
		t.Fatalf("expected 502 with the OpenAI fallback message, got %v", err)
	}
}

func TestSynthesizeEmptyBody(t *testing.T) {
	s := newTestSynth(t, &fakeSpeech{status: http.StatusOK})

	_, err := s.Synthesize(context.Background(), "hola", tts.SynthesizeOpts{Voice: "echo"})
	if apierr.KindOf(err) != apierr.KindUpstreamShape {
		t.Fatalf("expected UpstreamShapeError, got %v", err)
	}
}

func TestSynthesizeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := New(config.OpenAIConfig{APIKey: "sk-test", BaseURL: url + "/v1", Model: "tts-1", Timeout: time.Second})
	_, err := s.Synthesize(context.Background(), "hola", tts.SynthesizeOpts{Voice: "echo"})
	if apierr.KindOf(err) != apierr.KindTransport {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestDefaultVoicesHaveDefault(t *testing.T) {
	r, err := tts.NewVoiceRegistry(DefaultVoices, nil)
	if err != nil {
		t.Fatalf("NewVoiceRegistry: %v", err)
	}
	if r.Voice("ja") != "nova" || r.Voice("xx") != "alloy" {
		t.Fatalf("unexpected voices: ja=%q xx=%q", r.Voice("ja"), r.Voice("xx"))
	}
}
