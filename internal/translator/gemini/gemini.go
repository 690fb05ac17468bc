// Package gemini implements the Translator interface on the Gemini API.
//
// The system directive is sent as the model's system instruction and the reply
// MIME type is pinned to application/json.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/config"
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/prompt"
	"github.com/nadzzz/lingua/internal/translator"
)

const msgUpstreamDefault = "Error from Gemini API"

// Translator uses the Gemini GenerateContent API for translation.
type Translator struct {
	model  string
	client *genai.Client
}

// New creates a new Gemini translator from config.
func New(ctx context.Context, cfg config.GeminiConfig) (*Translator, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Translator{model: cfg.Model, client: client}, nil
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "gemini" }

// Translate sends the built prompt to Gemini and validates the reply.
func (t *Translator) Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error) {
	if err := translator.CheckInput(req); err != nil {
		return nil, err
	}

	msgs := prompt.Build(req)
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(msgs.System, genai.RoleUser),
		Temperature:       genai.Ptr[float32](prompt.Temperature),
		ResponseMIMEType:  "application/json",
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(msgs.User), gc)
	if err != nil {
		return nil, classify(err)
	}

	content := ""
	if resp != nil {
		content = resp.Text()
	}
	if strings.TrimSpace(content) == "" {
		slog.Error("unexpected gemini response structure", "model", t.model, "candidates", candidateCount(resp))
		return nil, apierr.New(apierr.KindUpstreamShape, translator.MsgShape)
	}

	res, err := translator.ParseReply(content)
	if err != nil {
		return nil, err
	}
	slog.Debug("gemini translation complete", "model", t.model, "translation_length", len(res.Translation))
	return res, nil
}

// Close is a no-op; the genai client holds no long-lived connections of its own.
func (t *Translator) Close() error { return nil }

func candidateCount(resp *genai.GenerateContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Candidates)
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		slog.Error("gemini api error", "status", apiErr.Code, "message", apiErr.Message)
		return apierr.Upstream(apiErr.Code, apiErr.Message, msgUpstreamDefault)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		slog.Error("gemini api error", "status", apiErrPtr.Code, "message", apiErrPtr.Message)
		return apierr.Upstream(apiErrPtr.Code, apiErrPtr.Message, msgUpstreamDefault)
	}
	if apierr.IsTransport(err) {
		slog.Error("gemini request failed", "error", err)
		return apierr.Wrap(apierr.KindTransport, translator.MsgTransport, err)
	}
	slog.Error("gemini response could not be decoded", "error", err)
	return apierr.Wrap(apierr.KindUpstreamShape, translator.MsgShape, err)
}
