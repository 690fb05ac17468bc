// Package message defines the request and result types flowing through the
// lingua pipeline.
package message

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/lingua/internal/apierr"
)

// MaxTextLength is the largest accepted input, in characters.
const MaxTextLength = 2000

// ContentTypeMPEG is the MIME type of synthesized speech.
const ContentTypeMPEG = "audio/mpeg"

// Formality is the register the translation must use.
//
// Only the four constants below carry a register instruction. Any other value
// is forwarded to the model as-is.
type Formality string

const (
	// FormalitySuperior asks for honorific, highly respectful language.
	FormalitySuperior Formality = "superior"

	// FormalityStranger asks for polite, professional language.
	FormalityStranger Formality = "stranger"

	// FormalityFriend asks for casual, relaxed language.
	FormalityFriend Formality = "friend"

	// FormalityChild asks for simple language a child understands.
	FormalityChild Formality = "child"
)

// Known reports whether f is one of the four recognized registers.
func (f Formality) Known() bool {
	switch f {
	case FormalitySuperior, FormalityStranger, FormalityFriend, FormalityChild:
		return true
	default:
		return false
	}
}

// ForbidsCasual reports whether casual language must be ruled out.
func (f Formality) ForbidsCasual() bool {
	return f == FormalitySuperior || f == FormalityStranger
}

// TranslationRequest is an inbound translation call.
type TranslationRequest struct {
	// Text is the source text (1..MaxTextLength characters).
	Text string `json:"text"`

	// SourceLanguage is the human-readable source language name (e.g. "English").
	SourceLanguage string `json:"sourceLanguage"`

	// TargetLanguage is the human-readable target language name (e.g. "Japanese").
	TargetLanguage string `json:"targetLanguage"`

	// TargetDialect optionally narrows the target (e.g. "Kansai").
	TargetDialect string `json:"targetDialect,omitempty"`

	// SpeakerPronouns is freeform; the model detects them when empty.
	SpeakerPronouns string `json:"speakerPronouns,omitempty"`

	// ListenerPronouns is freeform; the model detects them when empty.
	ListenerPronouns string `json:"listenerPronouns,omitempty"`

	// Formality is optional; empty lets the model choose.
	Formality Formality `json:"formality,omitempty"`
}

// Validate checks the request at the inbound boundary.
func (r *TranslationRequest) Validate() error {
	if r == nil || r.Text == "" {
		return apierr.New(apierr.KindMissingInput, "No text provided")
	}
	if n := utf8.RuneCountInString(r.Text); n > MaxTextLength {
		return apierr.New(apierr.KindInvalidInput,
			fmt.Sprintf("Text is too long: %d characters (limit %d)", n, MaxTextLength))
	}
	return nil
}

// TranslationResult is a validated model reply.
//
// The typed fields are populated only when the corresponding JSON value is a
// string. Raw keeps the reply object verbatim and is what gets marshalled.
type TranslationResult struct {
	Translation              string `json:"translation"`
	Romaji                   string `json:"romaji,omitempty"`
	DetectedSpeakerPronouns  string `json:"detectedSpeakerPronouns,omitempty"`
	DetectedListenerPronouns string `json:"detectedListenerPronouns,omitempty"`
	FormalityUsed            string `json:"formalityUsed,omitempty"`
	Notes                    string `json:"notes,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the verbatim reply when available.
func (r TranslationResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain TranslationResult
	return json.Marshal(plain(r))
}

// ResultFromObject builds a result from a decoded reply object, checking each
// optional field's type at runtime. It does not validate Translation.
func ResultFromObject(obj map[string]any, raw json.RawMessage) *TranslationResult {
	str := func(key string) string {
		s, _ := obj[key].(string)
		return s
	}
	return &TranslationResult{
		Translation:              str("translation"),
		Romaji:                   str("romaji"),
		DetectedSpeakerPronouns:  str("detectedSpeakerPronouns"),
		DetectedListenerPronouns: str("detectedListenerPronouns"),
		FormalityUsed:            str("formalityUsed"),
		Notes:                    str("notes"),
		Raw:                      raw,
	}
}

// SpeechRequest is an inbound synthesis call.
type SpeechRequest struct {
	// Text is the text to speak.
	Text string `json:"text"`

	// Language is an ISO-639-1 style code (e.g. "es") used to pick the voice.
	Language string `json:"language"`
}

// Validate checks the request at the inbound boundary.
func (r *SpeechRequest) Validate() error {
	if r == nil || r.Text == "" {
		return apierr.New(apierr.KindMissingInput, "No text provided")
	}
	return nil
}

// NormalizedLanguage returns the lower-cased, trimmed language code.
func (r *SpeechRequest) NormalizedLanguage() string {
	return strings.ToLower(strings.TrimSpace(r.Language))
}

// SpeechResult is synthesized audio.
type SpeechResult struct {
	// Audio is the encoded audio payload.
	Audio []byte `json:"audio"`

	// ContentType is the MIME type of Audio.
	ContentType string `json:"content_type"`

	// Voice is the voice identifier that produced Audio.
	Voice string `json:"voice,omitempty"`
}
