package tts

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// VoiceRegistry maps ISO-639-1 language codes to backend voice identifiers.
// It is immutable once built and safe for concurrent use.
type VoiceRegistry struct {
	voices map[string]string
}

// NewVoiceRegistry merges overrides onto defaults. The result must contain a
// DefaultVoiceKey entry.
func NewVoiceRegistry(defaults, overrides map[string]string) (*VoiceRegistry, error) {
	voices := make(map[string]string, len(defaults)+len(overrides))
	for lang, v := range defaults {
		voices[strings.ToLower(lang)] = v
	}
	for lang, v := range overrides {
		if v == "" {
			continue
		}
		voices[strings.ToLower(lang)] = v
	}
	if voices[DefaultVoiceKey] == "" {
		return nil, fmt.Errorf("voice registry has no %q entry", DefaultVoiceKey)
	}
	return &VoiceRegistry{voices: voices}, nil
}

// Voice returns the voice for lang, falling back to the default voice.
func (r *VoiceRegistry) Voice(lang string) string {
	if v, ok := r.voices[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return v
	}
	return r.voices[DefaultVoiceKey]
}

// Languages returns the mapped language codes, sorted, excluding the default key.
func (r *VoiceRegistry) Languages() []string {
	langs := slices.Sorted(maps.Keys(r.voices))
	return slices.DeleteFunc(langs, func(l string) bool { return l == DefaultVoiceKey })
}
