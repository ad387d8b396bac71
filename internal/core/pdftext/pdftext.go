// Package pdftext reads the text layer of a PDF in-process with ledongthuc/pdf, for
// hosts without poppler.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/pdf-fields/internal/core/ocr"
	"github.com/joseph-ayodele/pdf-fields/internal/extract"
)

// Extractor concatenates the plain text of every page, in page order.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) ExtractText(ctx context.Context, path string) (res extract.TextResult, err error) {
	start := time.Now()
	res.Method = "native"
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("page text extraction failed", "path", path, "page", pageNum, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", pageNum, err))
			continue
		}
		b.WriteString(text)
		res.Pages++
	}

	res.Text = ocr.NormalizeText(b.String())
	res.Duration = time.Since(start)
	return res, nil
}
