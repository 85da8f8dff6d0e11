package pdf

import (
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// ValidateInput checks that the supplied bytes are a readable PDF with at
// least one page before any embedding work starts. mupdf rejects truncated
// or non-PDF payloads much earlier than the writer would.
func ValidateInput(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty PDF input")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return fmt.Errorf("unreadable PDF input: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return errors.New("PDF input has no pages")
	}
	return nil
}

// PageCount returns the number of pages of a PDF document.
func PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("unreadable PDF input: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
