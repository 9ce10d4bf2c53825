package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"legal-companion/internal/metrics"
	"legal-companion/internal/pdf"
	"legal-companion/internal/storage"
)

// BlockRenderer convierte bloques de layout en los bytes del PDF.
type BlockRenderer interface {
	Render(blocks []pdf.Block) ([]byte, error)
}

// ExportService genera el PDF de un resultado y, si hay archivador, guarda una copia.
type ExportService struct {
	logger   *zap.Logger
	renderer BlockRenderer
	archiver storage.Archiver
	now      func() time.Time
}

// NewExportService acepta un archiver nil; en ese caso no se archiva nada.
func NewExportService(logger *zap.Logger, renderer BlockRenderer, archiver storage.Archiver) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		logger:   logger,
		renderer: renderer,
		archiver: archiver,
		now:      time.Now,
	}
}

type ExportInput struct {
	Content    string
	Action     string
	StampValue string
}

type ExportedPDF struct {
	Filename   string
	Data       []byte
	ArchiveKey string
}

func (s *ExportService) GeneratePDF(ctx context.Context, in ExportInput) (ExportedPDF, error) {
	if s.renderer == nil {
		return ExportedPDF{}, ErrServiceUnavailable
	}
	if strings.TrimSpace(in.Content) == "" {
		return ExportedPDF{}, inputErr("Content is required to generate a PDF.")
	}
	now := s.now()
	blocks := pdf.BuildStory(in.Content, in.Action, strings.TrimSpace(in.StampValue), now)
	data, err := s.renderer.Render(blocks)
	if err != nil {
		s.logger.Error("pdf render failed", zap.String("action", in.Action), zap.Error(err))
		return ExportedPDF{}, fmt.Errorf("generate pdf: %w", err)
	}
	out := ExportedPDF{Filename: pdf.Filename(in.Action, now), Data: data}

	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, out.Filename, data)
		if err != nil {
			s.logger.Warn("pdf archive failed", zap.String("file", out.Filename), zap.Error(err))
		} else {
			out.ArchiveKey = key
		}
	}
	metrics.PDFGeneratedTotal.WithLabelValues(strconv.FormatBool(out.ArchiveKey != "")).Inc()
	s.logger.Info("pdf generated", zap.String("file", out.Filename), zap.Int("bytes", len(data)))
	return out, nil
}
