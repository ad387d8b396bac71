package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/pdf-fields/internal/extract"
)

type PdftotextConfig struct {
	Binary string // binary name or absolute path; if empty -> "pdftotext"
	Layout bool   // pass -layout to keep the physical column layout
}

// Pdftotext extracts the text layer of every page with poppler's pdftotext.
type Pdftotext struct {
	cfg    PdftotextConfig
	runner Runner
	logger *slog.Logger
}

func NewPdftotext(cfg PdftotextConfig, runner Runner, logger *slog.Logger) *Pdftotext {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner()
	}
	if cfg.Binary == "" {
		cfg.Binary = "pdftotext"
	}
	return &Pdftotext{cfg: cfg, runner: runner, logger: logger}
}

func (p *Pdftotext) ExtractText(ctx context.Context, path string) (extract.TextResult, error) {
	start := time.Now()
	// pdftotext [-layout] -enc UTF-8 -eol unix <path> -
	args := make([]string, 0, 7)
	if p.cfg.Layout {
		args = append(args, "-layout")
	}
	args = append(args, "-enc", "UTF-8", "-eol", "unix", path, "-")

	out, errb, err := p.runner.Run(ctx, p.cfg.Binary, p.logger, args...)
	if err != nil {
		return extract.TextResult{Method: "pdftotext", Warnings: []string{string(errb)}},
			fmt.Errorf("pdftotext: %w", err)
	}
	raw := string(out)
	// a form feed closes every page
	pages := strings.Count(raw, "\f")
	if pages == 0 {
		pages = 1
	}
	return extract.TextResult{
		Text:     NormalizeText(raw),
		Pages:    pages,
		Method:   "pdftotext",
		Duration: time.Since(start),
	}, nil
}
