package message

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nadzzz/lingua/internal/apierr"
)

func TestTranslationRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  *TranslationRequest
		want apierr.Kind
	}{
		{"nil", nil, apierr.KindMissingInput},
		{"empty text", &TranslationRequest{TargetLanguage: "Japanese"}, apierr.KindMissingInput},
		{"at limit", &TranslationRequest{Text: strings.Repeat("é", MaxTextLength)}, ""},
		{"over limit", &TranslationRequest{Text: strings.Repeat("a", MaxTextLength+1)}, apierr.KindInvalidInput},
		{"ok", &TranslationRequest{Text: "Hello"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := apierr.KindOf(tc.req.Validate()); got != tc.want {
				t.Fatalf("kind = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTranslationRequestJSONNames(t *testing.T) {
	var req TranslationRequest
	body := `{"text":"Hi","sourceLanguage":"English","targetLanguage":"Korean","targetDialect":"Busan",` +
		`"speakerPronouns":"she/her","listenerPronouns":"they/them","formality":"stranger"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.TargetDialect != "Busan" || req.ListenerPronouns != "they/them" || req.Formality != FormalityStranger {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestFormality(t *testing.T) {
	for _, f := range []Formality{FormalitySuperior, FormalityStranger, FormalityFriend, FormalityChild} {
		if !f.Known() {
			t.Errorf("%q should be known", f)
		}
	}
	if Formality("royal").Known() || Formality("").Known() {
		t.Error("unexpected known formality")
	}
	if !FormalitySuperior.ForbidsCasual() || !FormalityStranger.ForbidsCasual() {
		t.Error("superior and stranger must forbid casual speech")
	}
	if FormalityFriend.ForbidsCasual() || FormalityChild.ForbidsCasual() {
		t.Error("friend and child must not forbid casual speech")
	}
}

func TestResultFromObject(t *testing.T) {
	raw := json.RawMessage(`{"translation":"Hola","romaji":null,"notes":42,"formalityUsed":"friend","extra":true}`)
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	res := ResultFromObject(obj, raw)
	if res.Translation != "Hola" || res.FormalityUsed != "friend" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Romaji != "" || res.Notes != "" {
		t.Fatalf("non-string fields must be dropped: %+v", res)
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != string(raw) {
		t.Fatalf("reply not emitted verbatim: %s", out)
	}
}

func TestTranslationResultMarshalWithoutRaw(t *testing.T) {
	out, err := json.Marshal(TranslationResult{Translation: "Hi"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"translation":"Hi"}` {
		t.Fatalf("got %s", out)
	}
}

func TestSpeechRequest(t *testing.T) {
	if apierr.KindOf((&SpeechRequest{Language: "es"}).Validate()) != apierr.KindMissingInput {
		t.Fatal("expected MissingInput")
	}
	if err := (&SpeechRequest{Text: "hola"}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := (&SpeechRequest{Language: " ES "}).NormalizedLanguage(); got != "es" {
		t.Fatalf("NormalizedLanguage = %q", got)
	}
}
