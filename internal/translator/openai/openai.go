// Package openai implements the Translator interface on the OpenAI Chat
// Completions API.
//
// Any OpenAI-compatible server (Ollama, vLLM, llama.cpp) can be targeted by
// setting a base URL. The SDK's built-in retries are disabled: retrying is the
// caller's policy, not the gateway's.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/config"
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/prompt"
	"github.com/nadzzz/lingua/internal/translator"
)

// Translator uses the Chat Completions API for translation.
type Translator struct {
	model string
	sdk   openai.Client
}

// New creates a new OpenAI translator from config.
func New(cfg config.OpenAIConfig, opts ...option.RequestOption) *Translator {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	return &Translator{
		model: cfg.Model,
		sdk:   openai.NewClient(append(base, opts...)...),
	}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "openai" }

// Translate sends the built prompt to the Chat Completions API and validates
// the reply.
func (t *Translator) Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error) {
	if err := translator.CheckInput(req); err != nil {
		return nil, err
	}

	msgs := prompt.Build(req)
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(msgs.System),
			openai.UserMessage(msgs.User),
		},
		Temperature: openai.Float(prompt.Temperature),
	}

	resp, err := t.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		slog.Error("unexpected chat completion structure", "model", t.model, "raw", resp.RawJSON())
		e := apierr.New(apierr.KindUpstreamShape, translator.MsgShape)
		e.Raw = resp.RawJSON()
		return nil, e
	}

	content := resp.Choices[0].Message.Content
	res, err := translator.ParseReply(content)
	if err != nil {
		return nil, err
	}
	slog.Debug("chat translation complete", "model", t.model, "translation_length", len(res.Translation))
	return res, nil
}

// Close is a no-op for the OpenAI translator.
func (t *Translator) Close() error { return nil }

// classify maps an SDK error to the gateway taxonomy.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		slog.Error("openai api error", "status", apiErr.StatusCode, "message", apiErr.Message)
		return apierr.Upstream(apiErr.StatusCode, apiErr.Message, translator.MsgUpstreamDefault)
	}
	if apierr.IsTransport(err) {
		slog.Error("openai request failed", "error", err)
		return apierr.Wrap(apierr.KindTransport, translator.MsgTransport, err)
	}
	slog.Error("openai response could not be decoded", "error", err)
	return apierr.Wrap(apierr.KindUpstreamShape, translator.MsgShape, err)
}
