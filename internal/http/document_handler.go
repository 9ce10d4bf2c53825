package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-companion/internal/service"
)

// DocumentProcessor resuelve las acciones de /process.
type DocumentProcessor interface {
	Process(ctx context.Context, in service.ProcessInput) (service.ProcessResult, error)
}

// PDFExporter genera el PDF descargable.
type PDFExporter interface {
	GeneratePDF(ctx context.Context, in service.ExportInput) (service.ExportedPDF, error)
}

// DocumentHandler atiende /process y /generate-pdf.
type DocumentHandler struct {
	logger    *zap.Logger
	processor DocumentProcessor
	exporter  PDFExporter
	maxUpload int64
}

func NewDocumentHandler(logger *zap.Logger, processor DocumentProcessor, exporter PDFExporter, maxUploadBytes int64) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{logger: logger, processor: processor, exporter: exporter, maxUpload: maxUploadBytes}
}

type processForm struct {
	Action       string `form:"action" binding:"required"`
	Text         string `form:"text"`
	Language     string `form:"language"`
	DocType      string `form:"doc_type"`
	Details      string `form:"details"`
	IncludeStamp bool   `form:"include_stamp"`
	State        string `form:"state"`
}

type processResponse struct {
	Action     string  `json:"action"`
	Result     string  `json:"result"`
	StampValue *string `json:"stamp_value"`
	State      *string `json:"state"`
}

// Process maneja POST /process (multipart).
func (h *DocumentHandler) Process(c *gin.Context) {
	h.limitBody(c)
	var form processForm
	if err := c.ShouldBind(&form); err != nil {
		h.bindFailed(c, err)
		return
	}

	upload, err := h.readUpload(c)
	if err != nil {
		h.bindFailed(c, err)
		return
	}

	in := service.ProcessInput{
		Action:       form.Action,
		Language:     form.Language,
		Text:         form.Text,
		File:         upload,
		DocType:      form.DocType,
		Details:      form.Details,
		IncludeStamp: form.IncludeStamp,
		State:        form.State,
	}
	if user, ok := CurrentUser(c); ok {
		in.User = &user
	}

	h.logger.Info("process request",
		zap.String("action", form.Action),
		zap.String("language", form.Language),
		zap.Bool("has_file", upload != nil),
	)
	res, err := h.processor.Process(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to process document.")
		return
	}
	c.JSON(http.StatusOK, processResponse{
		Action:     res.Action,
		Result:     res.Result,
		StampValue: nullable(res.StampValue),
		State:      nullable(res.State),
	})
}

// GeneratePDF maneja POST /generate-pdf y responde el archivo como adjunto.
func (h *DocumentHandler) GeneratePDF(c *gin.Context) {
	h.limitBody(c)
	var form struct {
		Content    string `form:"content" binding:"required"`
		Action     string `form:"action" binding:"required"`
		StampValue string `form:"stamp_value"`
	}
	if err := c.ShouldBind(&form); err != nil {
		h.bindFailed(c, err)
		return
	}

	out, err := h.exporter.GeneratePDF(c.Request.Context(), service.ExportInput{
		Content:    form.Content,
		Action:     form.Action,
		StampValue: form.StampValue,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to generate PDF")
		return
	}
	if out.ArchiveKey != "" {
		c.Header("X-Archive-Key", out.ArchiveKey)
	}
	c.Header("Content-Disposition", "attachment; filename="+out.Filename)
	c.Data(http.StatusOK, "application/pdf", out.Data)
}

func (h *DocumentHandler) limitBody(c *gin.Context) {
	if h.maxUpload > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
}

// readUpload devuelve nil si no se envio archivo.
func (h *DocumentHandler) readUpload(c *gin.Context) (*service.UploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if header.Filename == "" {
		return nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.UploadedFile{Name: header.Filename, Data: data}, nil
}

func (h *DocumentHandler) bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeDetail(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
		return
	}
	writeValidationError(c, h.logger, err)
}
