// Package openai implements the Synthesizer interface on the OpenAI Audio
// Speech API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/config"
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/tts"
)

// DefaultVoices maps ISO-639-1 codes to the built-in OpenAI voices.
var DefaultVoices = map[string]string{
	"en":                "alloy",
	"ja":                "nova",
	"es":                "echo",
	"fr":                "shimmer",
	"de":                "onyx",
	"zh":                "fable",
	"ko":                "nova",
	"it":                "shimmer",
	"pt":                "echo",
	"ru":                "onyx",
	tts.DefaultVoiceKey: "alloy",
}

const (
	// maxErrorBody bounds how much of an error body is read for diagnostics.
	maxErrorBody = 4 << 10

	msgUpstreamDefault = "Error from OpenAI API"
)

// Synthesizer generates MP3 speech through the OpenAI API.
type Synthesizer struct {
	model string
	sdk   openai.Client
}

// New creates a new OpenAI synthesizer from config.
func New(cfg config.OpenAIConfig, opts ...option.RequestOption) *Synthesizer {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	return &Synthesizer{
		model: cfg.Model,
		sdk:   openai.NewClient(append(base, opts...)...),
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "openai" }

// Synthesize requests MP3 audio for text in opts.Voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*message.SpeechResult, error) {
	params := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(opts.Voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}

	resp, err := s.sdk.Audio.Speech.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			slog.Error("openai speech api error", "status", apiErr.StatusCode, "voice", opts.Voice)
			return nil, tts.ClassifyHTTP(apiErr.StatusCode, apiErr.Message, msgUpstreamDefault, err)
		}
		slog.Error("openai speech request failed", "error", err)
		return nil, tts.ClassifyHTTP(0, "", msgUpstreamDefault, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Error("openai speech api error", "status", resp.StatusCode, "body", string(body))
		return nil, tts.ClassifyHTTP(resp.StatusCode, "", msgUpstreamDefault, nil)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.ClassifyHTTP(0, "", msgUpstreamDefault, fmt.Errorf("reading speech body: %w", err))
	}
	if len(audio) == 0 {
		return nil, apierr.New(apierr.KindUpstreamShape, tts.MsgShape)
	}

	return &message.SpeechResult{
		Audio:       audio,
		ContentType: message.ContentTypeMPEG,
		Voice:       opts.Voice,
	}, nil
}

// Close is a no-op; the SDK client is stateless.
func (s *Synthesizer) Close() error { return nil }
