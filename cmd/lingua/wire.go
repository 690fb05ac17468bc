package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/config"
	"github.com/nadzzz/lingua/internal/dispatch"
	"github.com/nadzzz/lingua/internal/retry"
	"github.com/nadzzz/lingua/internal/translator"
	geminitr "github.com/nadzzz/lingua/internal/translator/gemini"
	openaitr "github.com/nadzzz/lingua/internal/translator/openai"
	"github.com/nadzzz/lingua/internal/tts"
	elevenlabstts "github.com/nadzzz/lingua/internal/tts/elevenlabs"
	openaitts "github.com/nadzzz/lingua/internal/tts/openai"
)

// loadConfig loads the configuration with cmd's flags bound and installs the
// configured logger.
func loadConfig(cmd *cobra.Command, gf *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(gf.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg.Logging)
	return cfg, nil
}

// newTranslator builds the configured translation backend.
func newTranslator(ctx context.Context, cfg *config.Config) (translator.Translator, error) {
	switch cfg.Translator.Backend {
	case "openai":
		slog.Info("using OpenAI translator", "model", cfg.Translator.OpenAI.Model, "base_url", cfg.Translator.OpenAI.BaseURL)
		return openaitr.New(cfg.Translator.OpenAI), nil
	case "gemini":
		slog.Info("using Gemini translator", "model", cfg.Translator.Gemini.Model)
		return geminitr.New(ctx, cfg.Translator.Gemini)
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.Translator.Backend)
	}
}

// newSynthesizer builds the configured speech backend wrapped in a Gateway.
func newSynthesizer(cfg *config.Config) (tts.Synthesizer, error) {
	var (
		backend  tts.Synthesizer
		defaults map[string]string
	)
	switch cfg.TTS.Backend {
	case "openai":
		backend = openaitts.New(cfg.TTS.OpenAI)
		defaults = openaitts.DefaultVoices
	case "elevenlabs":
		el, err := elevenlabstts.New(cfg.TTS.ElevenLabs)
		if err != nil {
			return nil, err
		}
		backend = el
		defaults = elevenlabstts.DefaultVoices
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.TTS.Backend)
	}

	voices, err := tts.NewVoiceRegistry(defaults, cfg.TTS.Voices)
	if err != nil {
		return nil, err
	}
	slog.Info("using speech synthesizer", "backend", backend.Name(), "languages", voices.Languages(), "strip_accents", cfg.TTS.StripAccents)
	return tts.NewGateway(backend, voices, tts.NewNormalizer(cfg.TTS.StripAccents)), nil
}

// dispatchOptions converts config into dispatcher options.
func dispatchOptions(cfg *config.Config) dispatch.Options {
	return dispatch.Options{
		Retry: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.Retry.Delay,
			Retryable:   apierr.IsRetryable,
		},
		Breaker: dispatch.BreakerOptions{
			Enabled:          cfg.Breaker.Enabled,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OpenTimeout:      cfg.Breaker.OpenTimeout,
		},
	}
}
