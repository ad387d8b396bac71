package core

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/core/ocr"
	"github.com/joseph-ayodele/pdf-fields/internal/core/pdftext"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/extract"
)

// Stages are the external services selected by configuration.
type Stages struct {
	Text       extract.TextExtractor
	Raster     extract.Rasterizer
	Recognizer extract.Recognizer

	close func() error
}

// Close releases engines that hold native resources.
func (s Stages) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewStages builds the text, raster and OCR engines named in cfg. A nil runner runs
// the real binaries.
func NewStages(cfg *common.Config, runner ocr.Runner, logger *slog.Logger) (Stages, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var s Stages

	switch cfg.Text.Engine {
	case "native":
		s.Text = pdftext.NewExtractor(logger)
	case "pdftotext", "":
		s.Text = ocr.NewPdftotext(ocr.PdftotextConfig{Binary: cfg.Text.Pdftotext, Layout: cfg.Text.Layout}, runner, logger)
	default:
		return Stages{}, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown text engine %q", cfg.Text.Engine), common.ErrUnsupported)
	}

	s.Raster = ocr.NewPdftoppm(ocr.PdftoppmConfig{
		Binary: cfg.Raster.Pdftoppm,
		DPI:    cfg.Raster.DPI,
		Format: cfg.Raster.Format,
	}, runner, logger)

	tess := ocr.TesseractConfig{Binary: cfg.OCR.Tesseract, TessdataDir: cfg.OCR.TessdataDir, PSM: cfg.OCR.PSM}
	switch cfg.OCR.Engine {
	case "gosseract":
		g, err := ocr.NewGosseract(tess)
		if err != nil {
			return Stages{}, common.NewAppError(common.CodeConfig, "start gosseract", err)
		}
		s.Recognizer = g
		s.close = g.Close
	case "tesseract", "":
		s.Recognizer = ocr.NewTesseract(tess, runner, logger)
	default:
		return Stages{}, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown ocr engine %q", cfg.OCR.Engine), common.ErrUnsupported)
	}

	logger.Debug("stages ready", "text", cfg.Text.Engine, "ocr", cfg.OCR.Engine, "dpi", cfg.Raster.DPI)
	return s, nil
}

// NewProcessorFromConfig wires the stages into a processor for the given rules and layout.
func NewProcessorFromConfig(cfg *common.Config, stages Stages, l entity.Layout, logger *slog.Logger, opts ...ProcessorOption) (*Processor, error) {
	keywordRules, err := cfg.KeywordRules()
	if err != nil {
		return nil, err
	}
	fields := ocr.NewFieldExtractor(ocr.FieldConfig{Lang: cfg.OCR.Lang, CropDir: cfg.OCR.CropDir}, stages.Recognizer, logger)
	return NewProcessor(logger, stages.Text, stages.Raster, fields, keywordRules, l, opts...), nil
}
