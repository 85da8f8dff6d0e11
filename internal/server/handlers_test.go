package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/facturx"
	"github.com/newbi-app/facturx/internal/repository"
	"github.com/newbi-app/facturx/internal/service"
)

type stubGenerator struct {
	validateResult facturx.ValidationResult
	xml            string
	xmlErr         error
	genResult      *service.GenerateResult
	genErr         error
}

func (s *stubGenerator) Validate(*facturx.Invoice) facturx.ValidationResult {
	return s.validateResult
}

func (s *stubGenerator) BuildXML(*facturx.Invoice, facturx.DocumentType) (string, error) {
	return s.xml, s.xmlErr
}

func (s *stubGenerator) Generate(context.Context, service.GenerateRequest) (*service.GenerateResult, error) {
	return s.genResult, s.genErr
}

type stubDocuments struct {
	docs   []*repository.Document
	getDoc *repository.Document
}

func (s *stubDocuments) List(limit, offset int) ([]*repository.Document, error) {
	return s.docs, nil
}

func (s *stubDocuments) GetByID(id int64) (*repository.Document, error) {
	return s.getDoc, nil
}

type stubExporter struct{}

func (s *stubExporter) Export([]*repository.Document) (*bytes.Buffer, error) {
	return bytes.NewBufferString("PK\x03\x04workbook"), nil
}

func newTestRouter(gen Generator, docs DocumentReader) http.Handler {
	handlers := NewHandlers(gen, docs, &stubExporter{}, zap.NewNop())
	return NewServer(Config{}, handlers, zap.NewNop()).Router()
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const minimalInvoiceBody = `{"invoice": {"number": "F-2026-001"}}`

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubGenerator{}, &stubDocuments{})

	w := doRequest(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestValidateInvoice(t *testing.T) {
	t.Run("returns verdict with errors", func(t *testing.T) {
		gen := &stubGenerator{validateResult: facturx.ValidationResult{
			IsValid: false,
			Errors:  []string{"Nom du client manquant"},
		}}
		router := newTestRouter(gen, &stubDocuments{})

		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/validate", minimalInvoiceBody)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Contains(t, w.Body.String(), "Nom du client manquant")
	})

	t.Run("rejects missing invoice", func(t *testing.T) {
		router := newTestRouter(&stubGenerator{}, &stubDocuments{})

		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/validate", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBuildXML(t *testing.T) {
	t.Run("returns xml body", func(t *testing.T) {
		gen := &stubGenerator{xml: `<?xml version="1.0" encoding="UTF-8"?><rsm:CrossIndustryInvoice/>`}
		router := newTestRouter(gen, &stubDocuments{})

		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/xml", minimalInvoiceBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/xml; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "CrossIndustryInvoice")
	})

	t.Run("validation failure maps to 422", func(t *testing.T) {
		gen := &stubGenerator{xmlErr: &service.ValidationError{Errors: []string{"Numéro de facture manquant"}}}
		router := newTestRouter(gen, &stubDocuments{})

		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/xml", minimalInvoiceBody)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, []string{"Numéro de facture manquant"}, resp.Errors)
	})
}

func TestGenerate(t *testing.T) {
	hybrid := []byte("%PDF-1.4 hybrid")
	okResult := &service.GenerateResult{
		Document: &repository.Document{ID: 1, Number: "F-2026-001", CreatedAt: time.Now()},
		PDF:      hybrid,
		XML:      "<xml/>",
	}

	t.Run("returns archived document and base64 pdf", func(t *testing.T) {
		router := newTestRouter(&stubGenerator{genResult: okResult}, &stubDocuments{})

		body := `{"invoice": {"number": "F-2026-001"}, "pdf": "` +
			base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")) + `"}`
		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/generate", body)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool             `json:"success"`
			Data    GenerateResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, int64(1), resp.Data.Document.ID)

		decoded, err := base64.StdEncoding.DecodeString(resp.Data.PDF)
		require.NoError(t, err)
		assert.Equal(t, hybrid, decoded)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		router := newTestRouter(&stubGenerator{genResult: okResult}, &stubDocuments{})

		body := `{"invoice": {"number": "F-2026-001"}, "pdf": "not base64!!"}`
		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/generate", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure maps to 422", func(t *testing.T) {
		gen := &stubGenerator{genErr: &service.ValidationError{Errors: []string{"Aucun article dans la facture"}}}
		router := newTestRouter(gen, &stubDocuments{})

		body := `{"invoice": {"number": "F-2026-001"}, "pdf": "` +
			base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")) + `"}`
		w := doRequest(t, router, http.MethodPost, "/api/v1/facturx/generate", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Aucun article dans la facture")
	})
}

func TestListDocuments(t *testing.T) {
	docs := &stubDocuments{docs: []*repository.Document{
		{ID: 2, Number: "F-2026-002"},
		{ID: 1, Number: "F-2026-001"},
	}}
	router := newTestRouter(&stubGenerator{}, docs)

	w := doRequest(t, router, http.MethodGet, "/api/v1/documents?limit=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "F-2026-002")
	assert.Contains(t, w.Body.String(), "F-2026-001")
}

func TestGetDocument(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		docs := &stubDocuments{getDoc: &repository.Document{ID: 7, Number: "F-2026-007"}}
		router := newTestRouter(&stubGenerator{}, docs)

		w := doRequest(t, router, http.MethodGet, "/api/v1/documents/7", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "F-2026-007")
	})

	t.Run("not found", func(t *testing.T) {
		router := newTestRouter(&stubGenerator{}, &stubDocuments{})

		w := doRequest(t, router, http.MethodGet, "/api/v1/documents/99", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newTestRouter(&stubGenerator{}, &stubDocuments{})

		w := doRequest(t, router, http.MethodGet, "/api/v1/documents/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExportDocuments(t *testing.T) {
	router := newTestRouter(&stubGenerator{}, &stubDocuments{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/documents/export", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
}
