// Package tts defines the interface for text-to-speech synthesis.
//
// Lingua speaks translated text back to the caller. A Gateway wraps one
// backend Synthesizer, picks the voice for the requested language from a
// VoiceRegistry and normalizes the text before the backend sees it.
package tts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/message"
)

// DefaultVoiceKey is the registry entry used for unmapped languages.
const DefaultVoiceKey = "default"

// Messages shared by the synthesis backends.
const (
	MsgShape     = "Invalid response from speech service"
	MsgTransport = "Speech service unreachable"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g., "en", "fr", "es") to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "openai", "elevenlabs").
	Name() string

	// Synthesize generates MP3 audio from the given text using opts.Voice.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*message.SpeechResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// Gateway resolves the voice, normalizes text and delegates to a backend.
type Gateway struct {
	backend Synthesizer
	voices  *VoiceRegistry
	norm    *Normalizer
}

// NewGateway wraps backend. voices must not be nil; norm may be nil to
// disable text normalization.
func NewGateway(backend Synthesizer, voices *VoiceRegistry, norm *Normalizer) *Gateway {
	return &Gateway{backend: backend, voices: voices, norm: norm}
}

// Name returns the wrapped backend's name.
func (g *Gateway) Name() string { return g.backend.Name() }

// Voices returns the registry used for voice selection.
func (g *Gateway) Voices() *VoiceRegistry { return g.voices }

// Synthesize speaks text in the voice mapped to opts.Language. An explicit
// opts.Voice wins over the registry.
func (g *Gateway) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*message.SpeechResult, error) {
	if text == "" {
		return nil, apierr.New(apierr.KindMissingInput, "No text provided")
	}

	lang := strings.ToLower(strings.TrimSpace(opts.Language))
	voice := opts.Voice
	if voice == "" {
		voice = g.voices.Voice(lang)
	}
	spoken := text
	if g.norm != nil {
		spoken = g.norm.Normalize(text, lang)
	}

	start := time.Now()
	res, err := g.backend.Synthesize(ctx, spoken, SynthesizeOpts{Language: lang, Voice: voice})
	if err != nil {
		return nil, err
	}
	if len(res.Audio) == 0 {
		slog.Error("speech backend returned no audio", "backend", g.backend.Name(), "voice", voice)
		return nil, apierr.New(apierr.KindUpstreamShape, MsgShape)
	}
	if res.ContentType == "" {
		res.ContentType = message.ContentTypeMPEG
	}
	if res.Voice == "" {
		res.Voice = voice
	}

	slog.Debug("speech synthesized",
		"backend", g.backend.Name(),
		"language", lang,
		"voice", voice,
		"bytes", len(res.Audio),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Close closes the wrapped backend.
func (g *Gateway) Close() error { return g.backend.Close() }

// ClassifyHTTP tags a failed speech call. status is the upstream HTTP status
// or zero when no response was received; fallback names the backend when the
// upstream gave no message.
func ClassifyHTTP(status int, msg, fallback string, err error) error {
	if status != 0 {
		return apierr.Upstream(status, msg, fallback)
	}
	if err != nil && apierr.IsTransport(err) {
		return apierr.Wrap(apierr.KindTransport, MsgTransport, err)
	}
	if err == nil {
		err = errors.New("unknown speech failure")
	}
	return apierr.Wrap(apierr.KindUpstreamShape, MsgShape, err)
}
