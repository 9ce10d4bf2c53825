package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"legal-companion/internal/config"
	"legal-companion/internal/llm"
	"legal-companion/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

const sampleContract = `RENT AGREEMENT
This agreement is made between Ramesh Kumar (Landlord) and Priya Sharma (Tenant).
1. The monthly rent is Rs. 25,000 payable before the 5th of each month.
2. The security deposit of Rs. 1,00,000 is non-refundable under any circumstances.
3. The landlord may terminate this agreement at any time without notice.
4. The tenant shall bear all repairs including structural damage.`

const sampleQuery = "Can a landlord in India evict a tenant without notice during the lease term?"

// checkCase es una combinacion accion/idioma a evaluar.
type checkCase struct {
	Action   string
	Language string
}

var languages = []string{"en", service.LanguageHindi, service.LanguageBengali}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	var llmClient llm.LLMClient
	switch cfg.LLMProvider {
	case config.LLMProviderOpenAI:
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	default:
		llmClient = llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	}
	documentSvc := service.NewDocumentService(logger, llmClient, nil, nil)

	var (
		totalLang, totalStruct, n int
		failures                  []string
	)
	for _, action := range service.Actions {
		for _, lang := range languages {
			c := checkCase{Action: action, Language: lang}
			fmt.Printf("%s[%s/%s]%s\n", colorCyan, action, lang, colorReset)

			res, err := documentSvc.Process(ctx, processInput(c))
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s/%s: process: %v", action, lang, err))
				continue
			}
			fmt.Printf("%s%s%s\n", colorGreen, preview(res.Result, 400), colorReset)

			jr, err := evaluateResponse(ctx, llmClient, c, res.Result)
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s/%s: judge: %v", action, lang, err))
				continue
			}
			fmt.Printf("Judge: %q\n", jr.Reasoning)
			fmt.Printf("Scores: Language %d/5 | Structure %d/5\n\n", jr.LanguageScore, jr.StructureScore)

			totalLang += jr.LanguageScore
			totalStruct += jr.StructureScore
			n++
		}
	}

	fmt.Println("==== Averages ====")
	if n > 0 {
		fmt.Printf("Language: %.2f/5 | Structure: %.2f/5 (%d cases)\n",
			float64(totalLang)/float64(n), float64(totalStruct)/float64(n), n)
	}
	for _, f := range failures {
		fmt.Println("FAILED", f)
	}
}

func processInput(c checkCase) service.ProcessInput {
	in := service.ProcessInput{Action: c.Action, Language: c.Language}
	switch c.Action {
	case service.ActionLegalResearch:
		in.Text = sampleQuery
	case service.ActionGenerateDocument:
		in.DocType = "Rent Agreement"
		in.Details = "Landlord: Ramesh Kumar. Tenant: Priya Sharma. Property: Flat 4B, Andheri West, Mumbai. Rent Rs. 25,000 per month for 11 months."
		in.IncludeStamp = true
		in.State = "Maharashtra"
	default:
		in.Text = sampleContract
	}
	return in
}

func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
