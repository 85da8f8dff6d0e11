package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/pkg/database"
)

func newTestRepo(t *testing.T) *DocumentRepository {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../migrations"))

	return NewDocumentRepository(db.DB, logger)
}

func sampleDocument(number string) *Document {
	return &Document{
		Number:       number,
		DocumentType: "invoice",
		TotalHT:      1000,
		TotalVAT:     200,
		TotalTTC:     1200,
		XMLSize:      5120,
		PDFPath:      "generated_documents/" + number + "/facture_" + number + ".pdf",
	}
}

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	doc := sampleDocument("F-2026-001")
	require.NoError(t, repo.Create(nil, doc))
	assert.NotZero(t, doc.ID)

	got, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "F-2026-001", got.Number)
	assert.Equal(t, "invoice", got.DocumentType)
	assert.Equal(t, 1200.0, got.TotalTTC)
	assert.Equal(t, 5120, got.XMLSize)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestDocumentRepository_GetByID_Missing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID(42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocumentRepository_List(t *testing.T) {
	repo := newTestRepo(t)

	for _, n := range []string{"F-2026-001", "F-2026-002", "F-2026-003"} {
		require.NoError(t, repo.Create(nil, sampleDocument(n)))
	}

	docs, err := repo.List(2, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Newest first; same created_at falls back to highest id.
	assert.Equal(t, "F-2026-003", docs[0].Number)
	assert.Equal(t, "F-2026-002", docs[1].Number)

	all, err := repo.List(0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDocumentRepository_RegenerationsAllowed(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(nil, sampleDocument("F-2026-001")))
	require.NoError(t, repo.Create(nil, sampleDocument("F-2026-001")))

	n, err := repo.CountByNumber("F-2026-001")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
