//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Gosseract is a stub used when the "ocr" build tag is not set.
type Gosseract struct{}

// NewGosseract returns ErrOCRNotEnabled. To enable it, rebuild with: go build -tags ocr
func NewGosseract(TesseractConfig) (*Gosseract, error) {
	return nil, ErrOCRNotEnabled
}

func (g *Gosseract) Recognize(context.Context, image.Image, string) (string, error) {
	return "", ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (g *Gosseract) Close() error {
	return nil
}
