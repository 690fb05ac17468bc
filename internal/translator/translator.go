// Package translator defines the Translation Gateway: the boundary between
// lingua and an external generative model.
//
// A gateway builds the prompt, submits it, and validates the reply. It never
// retries and never substitutes default content; every failure is an
// *apierr.Error. lingua ships two backends: OpenAI-compatible chat completions
// and Gemini.
package translator

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/message"
)

// Translator is the interface every gateway backend implements.
type Translator interface {
	// Name returns the backend identifier (e.g., "openai", "gemini").
	Name() string

	// Translate performs one request/response exchange with the model.
	Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Error messages shared by all backends.
const (
	MsgUpstreamDefault = "Error from OpenAI API"
	MsgShape           = "Invalid response from translation service"
	MsgParse           = "Failed to parse translation response"
	MsgValidation      = "Invalid translation response format"
	MsgTransport       = "Translation service unreachable"
)

// CheckInput rejects requests that must not reach the network.
func CheckInput(req *message.TranslationRequest) error {
	if req == nil || req.Text == "" {
		return apierr.New(apierr.KindMissingInput, "No text provided")
	}
	return nil
}

// ParseReply turns raw model output into a validated result.
//
// Surrounding whitespace and a single markdown code fence are removed before
// decoding. The result keeps the reply object verbatim.
func ParseReply(content string) (*message.TranslationResult, error) {
	body := stripFence(strings.TrimSpace(content))

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil || obj == nil {
		slog.Error("translation reply is not a JSON object", "error", err, "content", content)
		e := apierr.Wrap(apierr.KindResponseParse, MsgParse, err)
		e.Raw = content
		return nil, e
	}

	res := message.ResultFromObject(obj, json.RawMessage(body))
	if strings.TrimSpace(res.Translation) == "" {
		slog.Error("translation reply missing translation field", "content", body)
		e := apierr.New(apierr.KindResponseValidation, MsgValidation)
		e.Raw = body
		return nil, e
	}
	return res, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop an info string such as "json" on the opening fence line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], "{[") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
