package service

import (
	"strings"
	"testing"
)

func TestClauseHint(t *testing.T) {
	if got := ClauseHint("  NON Disclosure Agreement "); !strings.HasPrefix(got, "Create a robust NDA") {
		t.Fatalf("expected nda hint, got %q", got)
	}
	if got := ClauseHint("lease deed"); got != genericClauseHint {
		t.Fatalf("expected generic hint, got %q", got)
	}
	if len(clauseHints) != 10 {
		t.Fatalf("expected 10 clause hints, got %d", len(clauseHints))
	}
}

func TestStampDuty(t *testing.T) {
	tests := []struct {
		docType, state, want string
	}{
		{"rent agreement", "Maharashtra", "Rs 100 (plus registration/cess as applicable)"},
		{"Rent Agreement", "delhi", "Rs 50 – Rs 100"},
		{"rent agreement", "", "Rs 100 – Rs 500 (varies by state and rent amount)"},
		{"sale deed", "Karnataka", "Ad valorem based on consideration (state schedule)"},
		{"NDA", "Goa", "Rs 100"},
		{"marriage certificate", "Delhi", stampFallback},
		{"", "", stampFallback},
	}
	for _, tt := range tests {
		if got := StampDuty(tt.docType, tt.state); got != tt.want {
			t.Fatalf("StampDuty(%q, %q): expected %q, got %q", tt.docType, tt.state, tt.want, got)
		}
	}
	if len(stampBaseRates) != 12 {
		t.Fatalf("expected 12 base rates, got %d", len(stampBaseRates))
	}
}

func TestBuildPromptCoversEveryActionAndLanguage(t *testing.T) {
	for _, action := range Actions {
		for _, lang := range []string{LanguageHindi, LanguageBengali, "en", "Tamil"} {
			prompt, ok := BuildPrompt(action, PromptInput{
				Language:   lang,
				Document:   "DOC",
				DocType:    "affidavit",
				ClauseHint: "HINT",
				Details:    "FACTS",
			})
			if !ok {
				t.Fatalf("missing template for %s/%s", action, lang)
			}
			if strings.Contains(prompt, "{{") {
				t.Fatalf("unexpanded placeholder in %s/%s: %q", action, lang, prompt)
			}
			if action == ActionGenerateDocument {
				if !strings.Contains(prompt, "HINT") || !strings.HasSuffix(prompt, "FACTS") {
					t.Fatalf("generation prompt %s missing hint or facts", lang)
				}
				continue
			}
			if !strings.HasSuffix(prompt, "DOC") {
				t.Fatalf("prompt %s/%s must end with the document", action, lang)
			}
		}
	}
	if _, ok := BuildPrompt("translate", PromptInput{}); ok {
		t.Fatalf("expected unknown action to have no template")
	}
}

func TestBuildPromptDoesNotExpandUserText(t *testing.T) {
	prompt, _ := BuildPrompt(ActionSummarize, PromptInput{Language: "en", Document: "{{language}}"})
	if !strings.HasSuffix(prompt, "{{language}}") {
		t.Fatalf("user text must be inserted literally, got %q", prompt)
	}
}
