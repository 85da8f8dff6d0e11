// Package repository persists the archive of generated Factur-X documents.
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Document is one archived generation: the business identifiers, the header
// totals as supplied by the caller and the location of the produced PDF.
type Document struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	DocumentType string    `json:"document_type"`
	TotalHT      float64   `json:"total_ht"`
	TotalVAT     float64   `json:"total_vat"`
	TotalTTC     float64   `json:"total_ttc"`
	XMLSize      int       `json:"xml_size"`
	PDFPath      string    `json:"pdf_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentRepository handles document archive database operations
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new document record. The same invoice number may be
// archived more than once; regeneration is a normal operation.
func (r *DocumentRepository) Create(tx *sql.Tx, doc *Document) error {
	query := `
		INSERT INTO documents (
			number, document_type, total_ht, total_vat, total_ttc,
			xml_size, pdf_path
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.Exec(query,
			doc.Number,
			doc.DocumentType,
			doc.TotalHT,
			doc.TotalVAT,
			doc.TotalTTC,
			doc.XMLSize,
			doc.PDFPath,
		)
	} else {
		result, err = r.db.Exec(query,
			doc.Number,
			doc.DocumentType,
			doc.TotalHT,
			doc.TotalVAT,
			doc.TotalTTC,
			doc.XMLSize,
			doc.PDFPath,
		)
	}

	if err != nil {
		r.logger.Error("Failed to create document", zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	doc.ID = id
	return nil
}

// GetByID retrieves a document by its ID. Returns nil without error when no
// row matches.
func (r *DocumentRepository) GetByID(id int64) (*Document, error) {
	query := `
		SELECT id, number, document_type, total_ht, total_vat, total_ttc,
			xml_size, pdf_path, created_at
		FROM documents
		WHERE id = ?
	`

	var doc Document
	err := r.db.QueryRow(query, id).Scan(
		&doc.ID,
		&doc.Number,
		&doc.DocumentType,
		&doc.TotalHT,
		&doc.TotalVAT,
		&doc.TotalTTC,
		&doc.XMLSize,
		&doc.PDFPath,
		&doc.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// List retrieves documents newest first. A limit of 0 means no limit.
func (r *DocumentRepository) List(limit, offset int) ([]*Document, error) {
	query := `
		SELECT id, number, document_type, total_ht, total_vat, total_ttc,
			xml_size, pdf_path, created_at
		FROM documents
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		err := rows.Scan(
			&doc.ID,
			&doc.Number,
			&doc.DocumentType,
			&doc.TotalHT,
			&doc.TotalVAT,
			&doc.TotalTTC,
			&doc.XMLSize,
			&doc.PDFPath,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// CountByNumber reports how many archived generations exist for an invoice
// number, used to flag regenerations in the export.
func (r *DocumentRepository) CountByNumber(number string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM documents WHERE number = ?", number).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}
