// Command facturx generates Factur-X output from an invoice JSON file: the
// CII XML alone, or a hybrid PDF when an input PDF is supplied.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/facturx"
	"github.com/newbi-app/facturx/internal/pdf"
	"github.com/newbi-app/facturx/pkg/utils"
)

func main() {
	var (
		inPath   = flag.String("in", "", "invoice JSON file (required)")
		docType  = flag.String("type", "invoice", "document type: invoice or creditNote")
		pdfPath  = flag.String("pdf", "", "rendered PDF to embed the XML into (optional)")
		outPath  = flag.String("out", "", "output file (default: stdout for XML, <in>.pdf for PDF)")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      *logLevel,
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*inPath, *docType, *pdfPath, *outPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "facturx: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, docType, pdfPath, outPath string, logger *zap.Logger) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	var inv facturx.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	result := facturx.NewValidator(logger).Validate(&inv)
	if !result.IsValid {
		for _, msg := range result.Errors {
			fmt.Fprintln(os.Stderr, " -", msg)
		}
		return fmt.Errorf("invoice has %d missing mandatory fields", len(result.Errors))
	}

	builder := facturx.NewBuilder(logger)
	dt := facturx.DocumentType(docType)

	if pdfPath == "" {
		xmlStr, err := builder.Build(&inv, dt)
		if err != nil {
			return err
		}
		if outPath == "" {
			fmt.Println(xmlStr)
			return nil
		}
		return os.WriteFile(outPath, []byte(xmlStr), 0644)
	}

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		return err
	}

	hybrid, err := pdf.NewEmbedder(builder, logger).Embed(context.Background(), pdfBytes, &inv, dt)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = fmt.Sprintf("%s_%s.pdf", prefixFor(dt), inv.Number)
	}
	if err := os.WriteFile(outPath, hybrid, 0644); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outPath, len(hybrid))
	return nil
}

func prefixFor(dt facturx.DocumentType) string {
	if dt == facturx.DocumentTypeCreditNote {
		return "avoir"
	}
	return "facture"
}
