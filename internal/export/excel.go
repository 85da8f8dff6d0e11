// Package export renders the document archive as an Excel workbook for the
// accountant's bookkeeping.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/repository"
)

const sheetName = "Documents"

var headers = []string{
	"ID", "Numéro", "Type", "Total HT", "Total TVA", "Total TTC",
	"Taille XML (octets)", "Fichier PDF", "Généré le",
}

// ExcelExporter writes document archive listings as .xlsx workbooks.
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export renders the documents into a single-sheet workbook, newest first as
// supplied by the repository.
func (e *ExcelExporter) Export(docs []*repository.Document) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, cell, h)
	}

	for row, doc := range docs {
		values := []interface{}{
			doc.ID,
			doc.Number,
			documentTypeLabel(doc.DocumentType),
			doc.TotalHT,
			doc.TotalVAT,
			doc.TotalTTC,
			doc.XMLSize,
			doc.PDFPath,
			doc.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			e.setCell(f, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Document export written",
		zap.Int("documents", len(docs)),
		zap.Int("size", buf.Len()))

	return buf, nil
}

func (e *ExcelExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func documentTypeLabel(t string) string {
	if t == "creditNote" {
		return "Avoir"
	}
	return "Facture"
}
