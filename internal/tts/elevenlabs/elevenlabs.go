// Package elevenlabs implements the Synthesizer interface on the ElevenLabs
// text-to-speech REST API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/config"
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/tts"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io"
	defaultOutputFormat = "mp3_44100_128"
	maxErrorBody        = 4 << 10
	msgUpstreamDefault  = "Error from ElevenLabs API"
)

// DefaultVoices uses one multilingual voice for every language; the
// multilingual model picks the accent from the text.
var DefaultVoices = map[string]string{
	tts.DefaultVoiceKey: "21m00Tcm4TlvDq8ikWAM",
}

// VoiceSettings tunes the generated voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// DefaultVoiceSettings returns recommended defaults.
func DefaultVoiceSettings() *VoiceSettings {
	return &VoiceSettings{SimilarityBoost: 0.75, UseSpeakerBoost: true}
}

// Synthesizer generates MP3 speech through ElevenLabs.
type Synthesizer struct {
	apiKey     string
	baseURL    string
	model      string
	settings   *VoiceSettings
	httpClient *http.Client
}

// New creates a new ElevenLabs synthesizer from config.
func New(cfg config.ElevenLabsConfig) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ELEVENLABS_API_KEY is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Synthesizer{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      cfg.Model,
		settings:   DefaultVoiceSettings(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "elevenlabs" }

// Synthesize converts text with the voice ID in opts.Voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*message.SpeechResult, error) {
	if strings.TrimSpace(opts.Voice) == "" {
		return nil, apierr.New(apierr.KindInvalidInput, "voice_id is required")
	}

	endpoint, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse elevenlabs base url: %w", err)
	}
	endpoint = endpoint.JoinPath("v1", "text-to-speech", opts.Voice)
	query := endpoint.Query()
	query.Set("output_format", defaultOutputFormat)
	endpoint.RawQuery = query.Encode()

	body := struct {
		Text          string         `json:"text"`
		ModelID       string         `json:"model_id,omitempty"`
		VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
	}{
		Text:          text,
		ModelID:       s.model,
		VoiceSettings: s.settings,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode elevenlabs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("build elevenlabs request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", message.ContentTypeMPEG)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("elevenlabs request failed", "error", err)
		return nil, tts.ClassifyHTTP(0, "", msgUpstreamDefault, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := detailMessage(errBody)
		slog.Error("elevenlabs api error", "status", resp.StatusCode, "voice", opts.Voice, "message", msg)
		return nil, tts.ClassifyHTTP(resp.StatusCode, msg, msgUpstreamDefault, nil)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.ClassifyHTTP(0, "", msgUpstreamDefault, fmt.Errorf("reading elevenlabs body: %w", err))
	}
	if len(audio) == 0 {
		return nil, apierr.New(apierr.KindUpstreamShape, tts.MsgShape)
	}
	return &message.SpeechResult{Audio: audio, ContentType: message.ContentTypeMPEG, Voice: opts.Voice}, nil
}

// Close releases idle connections.
func (s *Synthesizer) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// detailMessage extracts the human-readable message from an ElevenLabs error
// body, which is {"detail":{"message":...}} or {"detail":"..."}.
func detailMessage(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Detail, &obj) == nil {
		return obj.Message
	}
	return ""
}
