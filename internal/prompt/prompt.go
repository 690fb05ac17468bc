// Package prompt builds the instruction messages sent to the generative model
// for a translation request.
//
// The output is deterministic: the same request always yields the same bytes,
// so a retried request re-sends an identical prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nadzzz/lingua/internal/message"
)

// Temperature is the sampling temperature used for every translation call.
const Temperature = 0.3

const detectPronouns = "Detect if not provided"

const systemPrompt = "You are a highly accurate translation assistant. " +
	"Your primary goal is to provide natural, culturally appropriate translations that strictly follow the requested formality, dialect, and pronoun usage. " +
	"Always respond in valid JSON format without any markdown or code blocks. " +
	"If the formality level is 'superior' or 'stranger', do NOT use casual speech. " +
	"If the dialect is specified, ensure the translation includes local expressions and slang used by native speakers."

// registers maps each recognized formality to its register instruction.
var registers = map[message.Formality]string{
	message.FormalitySuperior: "Use HONORIFIC and highly respectful language. Avoid casual or informal words.",
	message.FormalityStranger: "Use POLITE and professional language.",
	message.FormalityFriend:   "Use CASUAL and relaxed language.",
	message.FormalityChild:    "Use SIMPLE and friendly language that a child would easily understand.",
}

// Messages is the system + user pair for one chat call.
type Messages struct {
	System string
	User   string
}

// System returns the fixed system-level directive.
func System() string { return systemPrompt }

// Build returns the system and user messages for req.
func Build(req *message.TranslationRequest) Messages {
	return Messages{System: systemPrompt, User: User(req)}
}

// User renders the user instruction for req.
func User(req *message.TranslationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Translate the following text from %s to %s", req.SourceLanguage, req.TargetLanguage)
	if req.TargetDialect != "" {
		fmt.Fprintf(&b, " in the %s dialect", req.TargetDialect)
	}
	b.WriteString(".\n\n")
	b.WriteString("If the target language has a non-Latin script, also provide a **romanized version**.\n\n")

	b.WriteString("### **Translation Rules:**\n")
	b.WriteString("- **Use native slang, idioms, and cultural expressions as appropriate for the dialect.**\n")
	b.WriteString("- **Ensure the tone and rhythm match natural spoken language.**\n")
	b.WriteString("- **Formality Level:**\n")
	writeFormality(&b, req.Formality)
	b.WriteString("- **DO NOT use casual language if the formality level is 'superior' or 'stranger'.**\n")
	if req.Formality.ForbidsCasual() {
		fmt.Fprintf(&b, "- **This request uses '%s': casual or informal language is FORBIDDEN.**\n", req.Formality)
	}
	fmt.Fprintf(&b, "- **Adapt the translation to fit the speaker’s pronouns (%s).**\n", orDefault(req.SpeakerPronouns, detectPronouns))
	fmt.Fprintf(&b, "- **Use appropriate sentence structure based on the listener’s pronouns (%s).**\n", orDefault(req.ListenerPronouns, detectPronouns))
	b.WriteString("- **Do NOT provide markdown, code blocks, or extra formatting. Return only valid JSON.**\n\n")

	b.WriteString("### **Text to Translate:**\n")
	fmt.Fprintf(&b, "%q\n\n", req.Text)

	b.WriteString("### **Expected JSON Response (DO NOT include markdown or code blocks):**\n")
	writeSchema(&b, req)
	return b.String()
}

func writeFormality(b *strings.Builder, f message.Formality) {
	if f == "" {
		b.WriteString("  Choose the most natural formality for the context.\n")
		return
	}
	fmt.Fprintf(b, "  STRICTLY follow this formality level: %q.\n", string(f))
	if reg, ok := registers[f]; ok {
		b.WriteString("  " + reg + "\n")
	}
}

func writeSchema(b *strings.Builder, req *message.TranslationRequest) {
	const anyPronouns = "he/him, she/her, they/them, neutral"
	formality := string(req.Formality)
	if formality == "" {
		formality = "auto-detected based on context"
	}

	b.WriteString("{\n")
	b.WriteString("  \"translation\": \"[translated text with native dialect]\",\n")
	b.WriteString("  \"romaji\": \"[romanized version, if applicable]\",\n")
	fmt.Fprintf(b, "  \"detectedSpeakerPronouns\": \"[%s]\",\n", orDefault(req.SpeakerPronouns, anyPronouns))
	fmt.Fprintf(b, "  \"detectedListenerPronouns\": \"[%s]\",\n", orDefault(req.ListenerPronouns, anyPronouns))
	fmt.Fprintf(b, "  \"formalityUsed\": \"[%s]\",\n", formality)
	b.WriteString("  \"notes\": \"[EXPLAIN how formality was applied. For 'superior', specify how honorific speech was used. " +
		"For 'stranger', mention polite forms. For 'friend', explain informal choices. If 'child', note simplifications.]\"\n")
	b.WriteString("}\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
