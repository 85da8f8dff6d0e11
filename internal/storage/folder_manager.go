package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FolderManager organizes generated documents into one folder per invoice
// number, so regenerations of the same invoice land side by side.
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateDocumentFolder creates {baseDir}/{invoiceNumber}/ and returns its path.
func (m *FolderManager) CreateDocumentFolder(invoiceNumber string) (string, error) {
	if invoiceNumber == "" {
		return "", fmt.Errorf("cannot create folder: empty invoice number")
	}

	safeName := m.SanitizeFolderName(invoiceNumber)
	if safeName == "" {
		return "", fmt.Errorf("cannot create folder: invoice number %q has no safe characters", invoiceNumber)
	}
	folderPath := filepath.Join(m.baseDir, safeName)

	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create document folder",
			zap.String("invoice_number", invoiceNumber),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Created document folder",
		zap.String("invoice_number", invoiceNumber),
		zap.String("folder_path", folderPath))

	return folderPath, nil
}

// GetDocumentFolderPath returns the path for an invoice folder without
// creating it.
func (m *FolderManager) GetDocumentFolderPath(invoiceNumber string) string {
	safeName := m.SanitizeFolderName(invoiceNumber)
	return filepath.Join(m.baseDir, safeName)
}

// FolderExists checks if the invoice folder already exists
func (m *FolderManager) FolderExists(invoiceNumber string) bool {
	info, err := os.Stat(m.GetDocumentFolderPath(invoiceNumber))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFolderName returns a filesystem-safe version of the name.
// Removes path separators and special characters to prevent directory
// traversal. Invoice numbers like "F-2026-001" come through unchanged.
func (m *FolderManager) SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")

	re := regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	return re.ReplaceAllString(name, "")
}
