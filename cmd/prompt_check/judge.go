package main

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"legal-companion/internal/llm"
	"legal-companion/internal/service"
)

// judgeResponse es la respuesta estructurada del juez en formato JSON.
type judgeResponse struct {
	Reasoning      string `json:"reasoning"`
	LanguageScore  int    `json:"language_score"`
	StructureScore int    `json:"structure_score"`
}

// expectedStructure describe, en ingles para el juez, las secciones que pide
// cada plantilla.
var expectedStructure = map[string]string{
	service.ActionSummarize:        "TL;DR in 2-3 lines, 5-10 bullet key terms, notable risks/ambiguities, action items or missing info checklist",
	service.ActionLegalResearch:    "short answer (2-4 lines), plain-language analysis, relevant authorities with brief relevance",
	service.ActionCheckDocument:    "missing fields/clauses as bullets, inconsistencies or ambiguous terms, suggested fixes with improved clause text",
	service.ActionAnalyzeRisk:      "one entry per risky clause with clause/topic, severity (Low/Medium/High), why it is risky and a suggested rewrite",
	service.ActionGenerateDocument: "a complete document with headings and numbered clauses, only the document text, no stamp duty or pricing details",
}

var languageNames = map[string]string{
	"en":                    "English",
	service.LanguageHindi:   "Hindi",
	service.LanguageBengali: "Bengali",
}

var listItemRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

func evaluateResponse(ctx context.Context, judge llm.LLMClient, c checkCase, response string) (judgeResponse, error) {
	share := scriptShare(response, c.Language)
	items := countListItems(response)

	heuristicLine := fmt.Sprintf(
		"Heuristic indicators: expected_script_share=%.2f, list_items=%d",
		share, items,
	)
	prompt := buildJudgePrompt(c, heuristicLine, response)

	raw, err := judge.Generate(ctx, prompt)
	if err != nil {
		return judgeResponse{}, err
	}

	jsonStr := extractFirstJSONObject(raw)
	if jsonStr == "" {
		return judgeResponse{}, fmt.Errorf("judge returned non-json: %q", raw)
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("parse judge json: %w (raw=%q)", err, raw)
	}

	jr.LanguageScore = clamp1to5(jr.LanguageScore)
	jr.StructureScore = clamp1to5(jr.StructureScore)

	// Una respuesta mayormente en otro alfabeto no puede aprobar idioma.
	if requiresScript(c.Language) && share < 0.5 && jr.LanguageScore > 2 {
		jr.LanguageScore = 2
	}
	if c.Action != service.ActionGenerateDocument && items == 0 && jr.StructureScore > 3 {
		jr.StructureScore = 3
	}
	return jr, nil
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

func requiresScript(language string) bool {
	return language == service.LanguageHindi || language == service.LanguageBengali
}

// scriptShare devuelve la fraccion de letras escritas en el alfabeto que
// corresponde al idioma. Para idiomas en alfabeto latino cuenta letras latinas.
func scriptShare(text, language string) float64 {
	table := unicode.Latin
	switch language {
	case service.LanguageHindi:
		table = unicode.Devanagari
	case service.LanguageBengali:
		table = unicode.Bengali
	}
	var letters, matched int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(table, r) {
			matched++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(matched) / float64(letters)
}

func countListItems(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if listItemRe.MatchString(line) {
			n++
		}
	}
	return n
}

func buildJudgePrompt(c checkCase, heuristicLine, response string) string {
	language := languageNames[c.Language]
	if language == "" {
		language = c.Language
	}
	return fmt.Sprintf(
		`You are an expert reviewer grading the output of a legal assistant.

Action: %s
Requested language: %s
Required structure: %s
%s

Assistant answer:
%q

Score (1-5):
1) Language: is the whole answer written in the requested language?
   - 5/5: entirely in the requested language; legal terms may stay in English only when there is no common equivalent.
   - 3/5: mostly in the requested language with whole sentences in another one.
   - 1/5: written in another language.
2) Structure: does it follow the required structure, in order?
   - 5/5: every section present and recognisable.
   - 3/5: some sections missing or merged.
   - 1/5: free text that ignores the structure.

Respond ONLY with JSON (no markdown):
{
  "reasoning": "...",
  "language_score": 0,
  "structure_score": 0
}`,
		c.Action, language, expectedStructure[c.Action], heuristicLine, response,
	)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado.
func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
