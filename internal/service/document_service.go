package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"legal-companion/internal/domain"
	"legal-companion/internal/llm"
	"legal-companion/internal/metrics"
	"legal-companion/internal/repository"
)

const defaultLanguage = "en"

// TextExtractor obtiene el texto de un PDF, pagina por pagina.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// DocumentService arma el prompt por accion e idioma y delega en el LLM.
type DocumentService struct {
	logger    *zap.Logger
	llmClient llm.LLMClient
	extractor TextExtractor
	searches  repository.SearchHistoryRepository
	now       func() time.Time
}

func NewDocumentService(logger *zap.Logger, llmClient llm.LLMClient, extractor TextExtractor, searches repository.SearchHistoryRepository) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		logger:    logger,
		llmClient: llmClient,
		extractor: extractor,
		searches:  searches,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type UploadedFile struct {
	Name string
	Data []byte
}

type ProcessInput struct {
	Action       string
	Language     string
	Text         string
	File         *UploadedFile
	DocType      string
	Details      string
	IncludeStamp bool
	State        string
	// User es nil en requests anonimos.
	User *domain.User
}

type ProcessResult struct {
	Action     string
	Result     string
	StampValue string
	State      string
}

// Process valida la entrada, consulta el modelo y devuelve su texto tal cual.
func (s *DocumentService) Process(ctx context.Context, in ProcessInput) (ProcessResult, error) {
	if s.llmClient == nil {
		return ProcessResult{}, ErrServiceUnavailable
	}
	action := strings.ToLower(strings.TrimSpace(in.Action))
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = defaultLanguage
	}

	document, err := s.resolveInput(action, in)
	if err != nil {
		return ProcessResult{}, err
	}

	if action == ActionLegalResearch && strings.TrimSpace(in.Text) != "" {
		s.recordSearch(ctx, in)
	}

	prompt, ok := BuildPrompt(action, PromptInput{
		Language:   language,
		Document:   document,
		DocType:    in.DocType,
		ClauseHint: ClauseHint(in.DocType),
		Details:    in.Details,
	})
	if !ok {
		return ProcessResult{}, inputErr("Invalid action selected.")
	}

	start := time.Now()
	result, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(action, "error").Observe(time.Since(start).Seconds())
		s.logger.Error("llm generate failed", zap.String("action", action), zap.Error(err))
		return ProcessResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	metrics.LLMRequestDuration.WithLabelValues(action, "ok").Observe(time.Since(start).Seconds())

	out := ProcessResult{Action: in.Action, Result: result, State: strings.TrimSpace(in.State)}
	if action == ActionGenerateDocument && in.IncludeStamp {
		out.StampValue = StampDuty(in.DocType, in.State)
	}
	return out, nil
}

// resolveInput devuelve el texto a analizar. generate-document no lo necesita.
func (s *DocumentService) resolveInput(action string, in ProcessInput) (string, error) {
	if action == ActionGenerateDocument {
		if strings.TrimSpace(in.DocType) == "" || strings.TrimSpace(in.Details) == "" {
			return "", inputErr("For document generation, both 'doc_type' and 'details' are required.")
		}
		return "", nil
	}

	if in.File != nil && in.File.Name != "" {
		if !strings.HasSuffix(strings.ToLower(in.File.Name), ".pdf") {
			return "", inputErr("Only PDF files are supported.")
		}
		if len(in.File.Data) == 0 {
			return "", inputErr("Uploaded PDF is empty.")
		}
		if s.extractor == nil {
			return "", ErrServiceUnavailable
		}
		text, err := s.extractor.ExtractText(in.File.Data)
		if err != nil {
			s.logger.Warn("pdf text extraction failed", zap.String("file", in.File.Name), zap.Error(err))
			return "", inputErr("PDF is empty or text cannot be extracted.")
		}
		if strings.TrimSpace(text) == "" {
			return "", inputErr("PDF is empty or text cannot be extracted.")
		}
		s.logger.Info("pdf processed", zap.Int("chars", len(text)))
		return text, nil
	}

	if text := strings.TrimSpace(in.Text); text != "" {
		return text, nil
	}
	return "", inputErr(fmt.Sprintf("For '%s' action, you must provide either a PDF file or text input.", in.Action))
}

func (s *DocumentService) recordSearch(ctx context.Context, in ProcessInput) {
	if s.searches == nil {
		return
	}
	entry := domain.SearchEntry{
		Query:     in.Text,
		Action:    ActionLegalResearch,
		Timestamp: s.now(),
	}
	if in.User != nil {
		entry.UserID = in.User.ID
	}
	if err := s.searches.Create(ctx, entry); err != nil {
		s.logger.Warn("search history write failed", zap.Error(err))
	}
}
