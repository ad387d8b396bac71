package core

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/core/pdfinfo"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/extract"
	"github.com/joseph-ayodele/pdf-fields/internal/rules"
)

// RegionExtractor recognizes every layout region of a page image.
type RegionExtractor interface {
	Extract(ctx context.Context, img image.Image, l entity.Layout) (map[string]string, error)
}

// InspectFunc checks a document before the external tools run. A nil InspectFunc skips the check.
type InspectFunc func(path string) (pdfinfo.Info, error)

// Processor turns one document into one record: text layer, keyword rules,
// first page raster, region OCR.
type Processor struct {
	logger  *slog.Logger
	text    extract.TextExtractor
	raster  extract.Rasterizer
	regions RegionExtractor
	inspect InspectFunc

	rules  []entity.KeywordRule
	layout entity.Layout
}

type ProcessorOption func(*Processor)

// WithInspector replaces the structural check run before extraction; nil disables it.
func WithInspector(fn InspectFunc) ProcessorOption {
	return func(p *Processor) { p.inspect = fn }
}

// NewProcessor freezes rules and layout for the lifetime of the processor.
func NewProcessor(
	logger *slog.Logger,
	text extract.TextExtractor,
	raster extract.Rasterizer,
	regions RegionExtractor,
	keywordRules []entity.KeywordRule,
	layout entity.Layout,
	opts ...ProcessorOption,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:  logger,
		text:    text,
		raster:  raster,
		regions: regions,
		inspect: pdfinfo.Inspect,
		rules:   append([]entity.KeywordRule(nil), keywordRules...),
		layout:  append(entity.Layout(nil), layout...),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) Rules() []entity.KeywordRule { return append([]entity.KeywordRule(nil), p.rules...) }
func (p *Processor) Layout() entity.Layout       { return append(entity.Layout(nil), p.layout...) }

// Result is a processed document together with the text its rules were evaluated on.
type Result struct {
	Record *entity.Record
	Text   string
}

// ProcessDocument always returns a record. When the text layer cannot be read the record
// holds only the filename. When rasterization or OCR fails the rule values are kept and
// the region values are empty. Either way the record is marked failed.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) *entity.Record {
	return p.Process(ctx, doc).Record
}

// Process is ProcessDocument that also returns the extracted text, for previews.
func (p *Processor) Process(ctx context.Context, doc entity.Document) Result {
	start := time.Now()
	rec := entity.NewRecord(doc.Filename)
	logger := p.logger.With("file", doc.Filename)
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	if p.inspect != nil {
		info, err := p.inspect(doc.SourcePath)
		if err != nil {
			logger.Error("processor.inspect.failed", "path", doc.SourcePath, "error", err)
			rec.Fail(common.DocumentError("inspect", err))
			return Result{Record: rec}
		}
		logger.Debug("processor.inspect.ok", "pages", info.Pages, "size", info.FileSize)
	}

	tr, err := p.text.ExtractText(ctx, doc.SourcePath)
	if err != nil {
		logger.Error("processor.text.failed", "path", doc.SourcePath, "error", err)
		rec.Fail(common.DocumentError("text", err))
		return Result{Record: rec}
	}
	logger.Debug("processor.text.ok", "method", tr.Method, "pages", tr.Pages, "chars", len(tr.Text))

	for _, r := range p.rules {
		rec.Set(r.Keyword, rules.Evaluate(tr.Text, r).Value())
	}

	if len(p.layout) > 0 {
		p.applyLayout(ctx, logger, doc, rec)
	}

	logger.Info("processor.document.done",
		"status", rec.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Result{Record: rec, Text: tr.Text}
}

func (p *Processor) applyLayout(ctx context.Context, logger *slog.Logger, doc entity.Document, rec *entity.Record) {
	img, err := p.raster.RasterizeFirstPage(ctx, doc.SourcePath)
	if err != nil {
		logger.Error("processor.raster.failed", "path", doc.SourcePath, "error", err)
		for _, rg := range p.layout {
			rec.Set(rg.Title, entity.Present(""))
		}
		rec.Fail(common.DocumentError("rasterize", err))
		return
	}

	values, err := p.regions.Extract(ctx, img, p.layout)
	for _, rg := range p.layout {
		rec.Set(rg.Title, entity.Present(values[rg.Title]))
	}
	if err != nil {
		logger.Error("processor.ocr.failed", "error", err)
		rec.Fail(common.DocumentError("ocr", err))
	}
}
