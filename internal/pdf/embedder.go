// Package pdf embeds Factur-X XML payloads into rendered invoice PDFs as a
// named attachment, the hybrid-format step of the Factur-X flow. The page
// layout itself is rendered elsewhere; this package only attaches bytes and
// sets basic document metadata.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/facturx"
)

// Attachment filename and description mandated by the Factur-X standard.
const (
	AttachmentName = "factur-x.xml"
	attachmentDesc = "Factur-X XML Invoice"

	metadataSubject = "Factur-X Invoice"
)

// Embedder attaches Factur-X XML to existing PDF bytes.
type Embedder struct {
	builder *facturx.Builder
	logger  *zap.Logger
	now     func() time.Time
}

// NewEmbedder creates an Embedder using the given XML builder.
func NewEmbedder(builder *facturx.Builder, logger *zap.Logger) *Embedder {
	return &Embedder{builder: builder, logger: logger, now: time.Now}
}

// Embed generates the Factur-X XML for the invoice and returns a copy of
// pdfBytes with the XML attached. This is the only I/O-bearing step of the
// generation flow; any failure propagates as a single error with no retry.
func (e *Embedder) Embed(ctx context.Context, pdfBytes []byte, inv *facturx.Invoice, docType facturx.DocumentType) ([]byte, error) {
	xmlStr, err := e.builder.Build(inv, docType)
	if err != nil {
		return nil, err
	}
	return e.EmbedXML(ctx, pdfBytes, xmlStr, DocumentTitle(inv, docType))
}

// EmbedXML attaches an already-built XML payload. Split out so callers that
// need the XML for archiving do not build it twice.
func (e *Embedder) EmbedXML(ctx context.Context, pdfBytes []byte, xmlStr, title string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateInput(pdfBytes); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()

	pdfCtx, err := api.ReadContext(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("validate PDF: %w", err)
	}

	modTime := e.now()
	attachment := model.Attachment{
		Reader:  strings.NewReader(xmlStr),
		ID:      AttachmentName,
		Desc:    attachmentDesc,
		ModTime: &modTime,
	}
	if err := pdfCtx.AddAttachment(attachment, false); err != nil {
		return nil, fmt.Errorf("attach %s: %w", AttachmentName, err)
	}

	var attached bytes.Buffer
	if err := api.WriteContext(pdfCtx, &attached); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}

	// Title/Subject live in the Info dictionary, managed as properties.
	var out bytes.Buffer
	properties := map[string]string{
		"Title":   title,
		"Subject": metadataSubject,
	}
	if err := api.AddProperties(bytes.NewReader(attached.Bytes()), &out, properties, conf); err != nil {
		return nil, fmt.Errorf("set PDF metadata: %w", err)
	}

	e.logger.Info("Factur-X XML embedded",
		zap.String("attachment", AttachmentName),
		zap.Int("xml_size", len(xmlStr)),
		zap.Int("pdf_size", out.Len()))

	return out.Bytes(), nil
}

// DocumentTitle is the PDF Title metadata value, e.g. "Facture F-2026-001".
func DocumentTitle(inv *facturx.Invoice, docType facturx.DocumentType) string {
	return strings.TrimSpace(docType.Title() + " " + inv.Number)
}
