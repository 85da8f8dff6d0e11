// Package service orchestrates Factur-X generation: pre-flight validation,
// XML building, PDF embedding, storage and archiving.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/facturx"
	"github.com/newbi-app/facturx/internal/pdf"
	"github.com/newbi-app/facturx/internal/repository"
	"github.com/newbi-app/facturx/internal/storage"
)

// ValidationError carries the full list of missing mandatory fields. Handlers
// map it to a 422 with the list in the body.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invoice validation failed: %s", strings.Join(e.Errors, "; "))
}

// XMLEmbedder attaches an XML payload to PDF bytes.
type XMLEmbedder interface {
	EmbedXML(ctx context.Context, pdfBytes []byte, xmlStr, title string) ([]byte, error)
}

// DocumentStore persists generated files.
type DocumentStore interface {
	SaveFileWithType(fullPath string, content []byte, fileType storage.FileType) error
}

// FolderProvider supplies the per-invoice output folder.
type FolderProvider interface {
	CreateDocumentFolder(invoiceNumber string) (string, error)
	SanitizeFolderName(name string) string
}

// DocumentArchiver records generations in the archive.
type DocumentArchiver interface {
	Create(tx *sql.Tx, doc *repository.Document) error
}

// GenerateRequest is one hybrid-PDF generation request.
type GenerateRequest struct {
	Invoice      *facturx.Invoice
	DocumentType facturx.DocumentType
	PDF          []byte
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	Document *repository.Document
	PDF      []byte
	XML      string
}

// GenerationService runs the full Factur-X flow.
type GenerationService struct {
	validator *facturx.Validator
	builder   *facturx.Builder
	embedder  XMLEmbedder
	files     DocumentStore
	folders   FolderProvider
	archive   DocumentArchiver
	logger    *zap.Logger
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	validator *facturx.Validator,
	builder *facturx.Builder,
	embedder XMLEmbedder,
	files DocumentStore,
	folders FolderProvider,
	archive DocumentArchiver,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		validator: validator,
		builder:   builder,
		embedder:  embedder,
		files:     files,
		folders:   folders,
		archive:   archive,
		logger:    logger,
	}
}

// Validate runs the pre-flight check without generating anything.
func (s *GenerationService) Validate(inv *facturx.Invoice) facturx.ValidationResult {
	return s.validator.Validate(inv)
}

// BuildXML validates the invoice and renders the Factur-X XML.
func (s *GenerationService) BuildXML(inv *facturx.Invoice, docType facturx.DocumentType) (string, error) {
	if result := s.validator.Validate(inv); !result.IsValid {
		return "", &ValidationError{Errors: result.Errors}
	}
	return s.builder.Build(inv, docType)
}

// Generate validates the invoice, builds the XML, embeds it into the supplied
// PDF, stores the hybrid file and archives the generation. The XML is built
// once and shared between embedding and the result.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	inv := req.Invoice

	if result := s.validator.Validate(inv); !result.IsValid {
		return nil, &ValidationError{Errors: result.Errors}
	}

	xmlStr, err := s.builder.Build(inv, req.DocumentType)
	if err != nil {
		return nil, err
	}

	title := pdf.DocumentTitle(inv, req.DocumentType)
	hybrid, err := s.embedder.EmbedXML(ctx, req.PDF, xmlStr, title)
	if err != nil {
		return nil, err
	}

	folderPath, err := s.folders.CreateDocumentFolder(inv.Number)
	if err != nil {
		return nil, err
	}

	fileName := s.documentFileName(inv.Number, req.DocumentType)
	fullPath := filepath.Join(folderPath, fileName)
	if err := s.files.SaveFileWithType(fullPath, hybrid, storage.FileTypePDF); err != nil {
		return nil, err
	}

	doc := &repository.Document{
		Number:       inv.Number,
		DocumentType: string(req.DocumentType),
		TotalHT:      inv.FinalTotalHT.Float64(),
		TotalVAT:     inv.TotalVAT.Float64(),
		TotalTTC:     inv.FinalTotalTTC.Float64(),
		XMLSize:      len(xmlStr),
		PDFPath:      fullPath,
	}
	if err := s.archive.Create(nil, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Factur-X document generated",
		zap.String("number", inv.Number),
		zap.String("document_type", string(req.DocumentType)),
		zap.String("pdf_path", fullPath),
		zap.Int("xml_size", len(xmlStr)))

	return &GenerateResult{Document: doc, PDF: hybrid, XML: xmlStr}, nil
}

// documentFileName is "facture_<n>.pdf" or "avoir_<n>.pdf" with the invoice
// number sanitized the same way as the folder name.
func (s *GenerationService) documentFileName(number string, docType facturx.DocumentType) string {
	prefix := "facture"
	if docType == facturx.DocumentTypeCreditNote {
		prefix = "avoir"
	}
	return fmt.Sprintf("%s_%s.pdf", prefix, s.folders.SanitizeFolderName(number))
}
