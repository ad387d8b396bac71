// Package extract holds the contracts between the document processor and the external
// PDF and OCR services.
package extract

import (
	"context"
	"image"
	"time"
)

// TextExtractor is Stage 1: file -> text layer of every page.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (TextResult, error)
}

type TextResult struct {
	// Text is all pages concatenated, LF line endings, no page separators.
	Text     string
	Pages    int
	Method   string // "pdftotext" | "native"
	Duration time.Duration
	Warnings []string
}

// Rasterizer is Stage 2: file -> image of the first page at a fixed DPI.
type Rasterizer interface {
	RasterizeFirstPage(ctx context.Context, path string) (image.Image, error)
}

// Recognizer is Stage 3: image crop -> text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, lang string) (string, error)
}

// TextFunc adapts a function to TextExtractor.
type TextFunc func(ctx context.Context, path string) (TextResult, error)

func (f TextFunc) ExtractText(ctx context.Context, path string) (TextResult, error) {
	return f(ctx, path)
}

// RasterFunc adapts a function to Rasterizer.
type RasterFunc func(ctx context.Context, path string) (image.Image, error)

func (f RasterFunc) RasterizeFirstPage(ctx context.Context, path string) (image.Image, error) {
	return f(ctx, path)
}

// RecognizeFunc adapts a function to Recognizer.
type RecognizeFunc func(ctx context.Context, img image.Image, lang string) (string, error)

func (f RecognizeFunc) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	return f(ctx, img, lang)
}
