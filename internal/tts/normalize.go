package tts

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics is the Combining Diacritical Marks block.
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalizer rewrites text before synthesis for languages whose voices
// mispronounce accented input.
type Normalizer struct {
	strip map[string]bool
}

// NewNormalizer strips accents for the given language codes.
func NewNormalizer(stripLangs []string) *Normalizer {
	strip := make(map[string]bool, len(stripLangs))
	for _, l := range stripLangs {
		strip[strings.ToLower(strings.TrimSpace(l))] = true
	}
	return &Normalizer{strip: strip}
}

// Normalize returns text unchanged unless lang is in the strip set, in which
// case it is NFD-decomposed and combining marks U+0300..U+036F are removed.
// The result is left decomposed.
func (n *Normalizer) Normalize(text, lang string) string {
	if !n.strip[strings.ToLower(lang)] {
		return text
	}
	return StripAccents(text)
}

// StripAccents decomposes text and drops combining diacritical marks.
func StripAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
