// Package config handles loading and validating the lingua configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root configuration for the lingua daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each inbound transport.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TranslatorConfig selects and configures the generative-model backend.
type TranslatorConfig struct {
	Backend string       `mapstructure:"backend"` // "openai" or "gemini"
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Gemini  GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI (or OpenAI-compatible) API settings.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"` // empty uses api.openai.com
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RetryConfig is the caller-side retry policy for translation.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

// BreakerConfig configures the upstream circuit breakers.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"` // consecutive failures before opening
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// TTSConfig selects and configures the speech-synthesis backend.
type TTSConfig struct {
	Backend      string            `mapstructure:"backend"` // "openai" or "elevenlabs"
	OpenAI       OpenAIConfig      `mapstructure:"openai"`
	ElevenLabs   ElevenLabsConfig  `mapstructure:"elevenlabs"`
	Voices       map[string]string `mapstructure:"voices"`        // ISO-639-1 code -> voice, overrides built-in defaults
	StripAccents []string          `mapstructure:"strip_accents"` // ISO-639-1 codes whose text is accent-stripped
}

// ElevenLabsConfig holds ElevenLabs API settings.
type ElevenLabsConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"http-port":   "transports.http.port",
	"grpc-port":   "transports.grpc.port",
	"backend":     "translator.backend",
	"tts-backend": "tts.backend",
}

// Load reads the configuration from defaults, file, environment variables and
// flags, in increasing order of precedence.
//
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./lingua.yaml, ./configs/lingua.yaml, /etc/lingua/lingua.yaml.
// flags may be nil; flags it contains that appear in flagKeys are bound.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("lingua")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/lingua")
	}

	// Environment variables: LINGUA_TRANSLATOR_BACKEND, LINGUA_RETRY_DELAY, etc.
	v.SetEnvPrefix("LINGUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	// Read config file (optional: env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Translator.OpenAI.APIKey = resolveSecret(cfg.Translator.OpenAI.APIKey, "OPENAI_API_KEY")
	cfg.Translator.Gemini.APIKey = resolveSecret(cfg.Translator.Gemini.APIKey, "GEMINI_API_KEY")
	cfg.TTS.OpenAI.APIKey = resolveSecret(cfg.TTS.OpenAI.APIKey, "OPENAI_API_KEY")
	cfg.TTS.ElevenLabs.APIKey = resolveSecret(cfg.TTS.ElevenLabs.APIKey, "ELEVENLABS_API_KEY")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, k := range []string{
		"translator.openai.api_key", "translator.openai.base_url",
		"translator.gemini.api_key", "translator.gemini.base_url",
		"tts.openai.api_key", "tts.openai.base_url",
		"tts.elevenlabs.api_key",
	} {
		v.SetDefault(k, "")
	}

	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("translator.backend", "openai")
	v.SetDefault("translator.openai.model", "gpt-3.5-turbo")
	v.SetDefault("translator.openai.timeout", 60*time.Second)
	v.SetDefault("translator.gemini.model", "gemini-2.0-flash")
	v.SetDefault("translator.gemini.timeout", 60*time.Second)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.open_timeout", 30*time.Second)
	v.SetDefault("tts.backend", "openai")
	v.SetDefault("tts.openai.model", "tts-1")
	v.SetDefault("tts.openai.timeout", 60*time.Second)
	v.SetDefault("tts.elevenlabs.base_url", "https://api.elevenlabs.io")
	v.SetDefault("tts.elevenlabs.model", "eleven_multilingual_v2")
	v.SetDefault("tts.elevenlabs.timeout", 2*time.Minute)
	v.SetDefault("tts.strip_accents", []string{"es"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	if err := c.ValidateTranslator(); err != nil {
		return err
	}
	return c.ValidateTTS()
}

// ValidateTranslator checks the translator, retry and breaker settings.
func (c *Config) ValidateTranslator() error {
	switch c.Translator.Backend {
	case "openai":
		if c.Translator.OpenAI.APIKey == "" && c.Translator.OpenAI.BaseURL == "" {
			return errors.New("OPENAI_API_KEY is required for the openai translator")
		}
	case "gemini":
		if c.Translator.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini translator")
		}
	default:
		return fmt.Errorf("unknown translator backend %q", c.Translator.Backend)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative, got %s", c.Retry.Delay)
	}
	if c.Breaker.Enabled && c.Breaker.FailureThreshold == 0 {
		return errors.New("breaker.failure_threshold must be positive when the breaker is enabled")
	}
	return nil
}

// ValidateTTS checks the speech-synthesis settings.
func (c *Config) ValidateTTS() error {
	switch c.TTS.Backend {
	case "openai":
		if c.TTS.OpenAI.APIKey == "" && c.TTS.OpenAI.BaseURL == "" {
			return errors.New("OPENAI_API_KEY is required for the openai synthesizer")
		}
	case "elevenlabs":
		if c.TTS.ElevenLabs.APIKey == "" {
			return errors.New("ELEVENLABS_API_KEY is required for the elevenlabs synthesizer")
		}
	default:
		return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
	}
	return nil
}

// resolveSecret expands a "${VAR_NAME}" reference and falls back to the
// conventional environment variable when the value is empty or the reference
// is unset.
func resolveSecret(val, fallbackEnv string) string {
	val = resolveEnvRef(val)
	if val == "" {
		return os.Getenv(fallbackEnv)
	}
	return val
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var
// value. An unset reference resolves to "" so it never reaches a request.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
