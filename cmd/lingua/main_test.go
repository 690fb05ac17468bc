package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeOpenAI serves chat completions and speech. The first failChat chat
// calls answer 500.
type fakeOpenAI struct {
	failChat  int32
	chatCalls atomic.Int32
	voice     string
	input     string
	userMsg   string
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		n := f.chatCalls.Add(1)
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, m := range body.Messages {
			if m.Role == "user" {
				f.userMsg = m.Content
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if n <= f.failChat {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"The server had an error"}}`))
			return
		}
		content, _ := json.Marshal(`{"translation":"またね","romaji":"mata ne","formalityUsed":"friend"}`)
		_, _ = w.Write([]byte(`{"id":"c","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(content) + `}}]}`))
	case strings.HasSuffix(r.URL.Path, "/audio/speech"):
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.voice, _ = body["voice"].(string)
		f.input, _ = body["input"].(string)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xff, 0xfb, 0x90, 0x00})
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, f *fakeOpenAI) string {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "ELEVENLABS_API_KEY"} {
		t.Setenv(k, "")
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg := `
translator:
  backend: openai
  openai:
    api_key: sk-test
    base_url: ` + srv.URL + `/v1
retry:
  max_attempts: 3
  delay: 1ms
tts:
  backend: openai
  openai:
    api_key: sk-test
    base_url: ` + srv.URL + `/v1
logging:
  level: error
`
	path := filepath.Join(t.TempDir(), "lingua.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTranslateCommandRetries(t *testing.T) {
	f := &fakeOpenAI{failChat: 2}
	cfg := setup(t, f)

	out, err := run(t, "translate", "--config", cfg, "--to", "Japanese", "--formality", "friend", "See", "you")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if res["translation"] != "またね" {
		t.Fatalf("translation = %v", res["translation"])
	}
	if f.chatCalls.Load() != 3 {
		t.Fatalf("expected 3 chat calls, got %d", f.chatCalls.Load())
	}
}

func TestTranslateCommandFormalityVerbatim(t *testing.T) {
	f := &fakeOpenAI{}
	cfg := setup(t, f)

	if _, err := run(t, "translate", "--config", cfg, "--to", "Japanese", "--formality", "Friend", "See", "you"); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !strings.Contains(f.userMsg, `formality level: "Friend"`) {
		t.Fatalf("formality not forwarded as given:\n%s", f.userMsg)
	}
}

func TestTranslateCommandExhausted(t *testing.T) {
	f := &fakeOpenAI{failChat: 10}
	cfg := setup(t, f)

	_, err := run(t, "translate", "--config", cfg, "--to", "Japanese", "Hello")
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestTranslateCommandRequiresTarget(t *testing.T) {
	cfg := setup(t, &fakeOpenAI{})
	if _, err := run(t, "translate", "--config", cfg, "Hello"); err == nil {
		t.Fatal("expected error without --to")
	}
}

func TestSpeakCommand(t *testing.T) {
	f := &fakeOpenAI{}
	cfg := setup(t, f)
	outFile := filepath.Join(t.TempDir(), "out.mp3")

	if _, err := run(t, "speak", "--config", cfg, "--lang", "es", "--out", outFile, "Un", "café"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	audio, err := os.ReadFile(outFile)
	if err != nil || len(audio) != 4 {
		t.Fatalf("audio file: %v (%d bytes)", err, len(audio))
	}
	if f.voice != "echo" || f.input != "Un cafe" {
		t.Fatalf("speech request voice=%q input=%q", f.voice, f.input)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "lingua dev") {
		t.Fatalf("version output = %q", out)
	}
}
