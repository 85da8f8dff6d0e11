package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/repository"
)

func TestExcelExporter_Export(t *testing.T) {
	docs := []*repository.Document{
		{
			ID:           2,
			Number:       "AV-2026-001",
			DocumentType: "creditNote",
			TotalHT:      -100,
			TotalVAT:     -20,
			TotalTTC:     -120,
			XMLSize:      4096,
			PDFPath:      "generated_documents/AV-2026-001/avoir_AV-2026-001.pdf",
			CreatedAt:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:           1,
			Number:       "F-2026-001",
			DocumentType: "invoice",
			TotalHT:      1000,
			TotalVAT:     200,
			TotalTTC:     1200,
			XMLSize:      5120,
			PDFPath:      "generated_documents/F-2026-001/facture_F-2026-001.pdf",
			CreatedAt:    time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		},
	}

	buf, err := NewExcelExporter(zap.NewNop()).Export(docs)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Documents"}, f.GetSheetList())

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Numéro", rows[0][1])
	assert.Equal(t, "AV-2026-001", rows[1][1])
	assert.Equal(t, "Avoir", rows[1][2])
	assert.Equal(t, "F-2026-001", rows[2][1])
	assert.Equal(t, "Facture", rows[2][2])
	assert.Equal(t, "2026-01-15 10:30:00", rows[2][8])
}

func TestExcelExporter_ExportEmpty(t *testing.T) {
	buf, err := NewExcelExporter(zap.NewNop()).Export(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
