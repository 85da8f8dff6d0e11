package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/facturx"
	"github.com/newbi-app/facturx/internal/repository"
	"github.com/newbi-app/facturx/internal/service"
)

// Generator runs the Factur-X generation flow.
type Generator interface {
	Validate(inv *facturx.Invoice) facturx.ValidationResult
	BuildXML(inv *facturx.Invoice, docType facturx.DocumentType) (string, error)
	Generate(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error)
}

// DocumentReader reads the document archive.
type DocumentReader interface {
	List(limit, offset int) ([]*repository.Document, error)
	GetByID(id int64) (*repository.Document, error)
}

// Exporter renders the archive as a workbook.
type Exporter interface {
	Export(docs []*repository.Document) (*bytes.Buffer, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	generator Generator
	documents DocumentReader
	exporter  Exporter
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(generator Generator, documents DocumentReader, exporter Exporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		generator: generator,
		documents: documents,
		exporter:  exporter,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// DocumentRequest carries an invoice and the document type to produce.
// Type defaults to "invoice"; anything other than "creditNote" is treated
// as an invoice.
type DocumentRequest struct {
	Type    string           `json:"type"`
	Invoice *facturx.Invoice `json:"invoice" binding:"required"`
}

// GenerateRequest additionally carries the rendered PDF, base64-encoded.
type GenerateRequest struct {
	DocumentRequest
	PDF string `json:"pdf" binding:"required"`
}

// GenerateResponse describes the archived result of a generation.
type GenerateResponse struct {
	Document *repository.Document `json:"document"`
	PDF      string               `json:"pdf"`
}

// ListDocumentsRequest represents query parameters for listing documents
type ListDocumentsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (r *DocumentRequest) documentType() facturx.DocumentType {
	if r.Type == string(facturx.DocumentTypeCreditNote) {
		return facturx.DocumentTypeCreditNote
	}
	return facturx.DocumentTypeInvoice
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ValidateInvoice handles POST /api/v1/facturx/validate. Both outcomes are
// 200; the body carries the verdict and the error list.
func (h *Handlers) ValidateInvoice(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	result := h.generator.Validate(req.Invoice)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// BuildXML handles POST /api/v1/facturx/xml and returns the raw CII document.
func (h *Handlers) BuildXML(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	xmlStr, err := h.generator.BuildXML(req.Invoice, req.documentType())
	if err != nil {
		h.generationError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(xmlStr))
}

// Generate handles POST /api/v1/facturx/generate: builds the XML, embeds it
// into the supplied PDF and returns the archived document with the hybrid
// PDF, base64-encoded like it arrived.
func (h *Handlers) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	pdfBytes, err := base64.StdEncoding.DecodeString(req.PDF)
	if err != nil {
		h.badRequest(c, "pdf must be base64-encoded", err)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), service.GenerateRequest{
		Invoice:      req.Invoice,
		DocumentType: req.documentType(),
		PDF:          pdfBytes,
	})
	if err != nil {
		h.generationError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: GenerateResponse{
			Document: result.Document,
			PDF:      base64.StdEncoding.EncodeToString(result.PDF),
		},
	})
}

// ListDocuments handles GET /api/v1/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	var req ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	docs, err := h.documents.List(req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve documents",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    docs,
	})
}

// GetDocument handles GET /api/v1/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid document ID", err)
		return
	}

	doc, err := h.documents.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve document",
		})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "document not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    doc,
	})
}

// ExportDocuments handles GET /api/v1/documents/export and streams the
// archive as an .xlsx attachment.
func (h *Handlers) ExportDocuments(c *gin.Context) {
	docs, err := h.documents.List(0, 0)
	if err != nil {
		h.logger.Error("Failed to list documents for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve documents",
		})
		return
	}

	buf, err := h.exporter.Export(docs)
	if err != nil {
		h.logger.Error("Failed to export documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export documents",
		})
		return
	}

	fileName := fmt.Sprintf("documents_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// generationError maps a ValidationError to 422 with the field list; any
// other failure is a 500.
func (h *Handlers) generationError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "invoice validation failed",
			Errors:  vErr.Errors,
		})
		return
	}

	h.logger.Error("Generation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   "generation failed: " + err.Error(),
	})
}
