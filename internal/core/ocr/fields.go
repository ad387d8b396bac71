package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/extract"
	"github.com/joseph-ayodele/pdf-fields/internal/layout"
)

type FieldConfig struct {
	Lang    string // default "por"
	CropDir string // when set, every non-empty crop is written as <title>.png
}

// FieldExtractor recognizes the text inside each layout region of a page image.
type FieldExtractor struct {
	cfg        FieldConfig
	recognizer extract.Recognizer
	logger     *slog.Logger
}

func NewFieldExtractor(cfg FieldConfig, recognizer extract.Recognizer, logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = constants.DefaultOCRLang
	}
	return &FieldExtractor{cfg: cfg, recognizer: recognizer, logger: logger}
}

// Extract returns title -> trimmed text for every region. Regions outside the image
// give "" without calling the recognizer. A failing region gives "" and its error is
// joined into the returned error; the other regions are still recognized. Repeated
// titles keep the last value.
func (f *FieldExtractor) Extract(ctx context.Context, img image.Image, l entity.Layout) (map[string]string, error) {
	out := make(map[string]string, len(l))
	var errs []error
	logger := f.logger
	if name := common.DocumentFromContext(ctx); name != "" {
		logger = logger.With("file", name)
	}
	for _, rg := range l {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			out[rg.Title] = ""
			continue
		}
		rect := layout.Clamp(rg, img.Bounds())
		if rect.Empty() {
			logger.Warn("region outside page image, skipping",
				"title", rg.Title, "coords", []int{rg.X, rg.Y, rg.W, rg.H}, "bounds", img.Bounds().String())
			out[rg.Title] = ""
			continue
		}

		crop := Crop(img, rect)
		if f.cfg.CropDir != "" {
			if err := writeCrop(f.cfg.CropDir, rg.Title, crop); err != nil {
				logger.Warn("failed to write crop", "title", rg.Title, "error", err)
			}
		}

		text, err := f.recognizer.Recognize(ctx, crop, f.cfg.Lang)
		if err != nil {
			logger.Error("region ocr failed", "title", rg.Title, "error", err)
			errs = append(errs, fmt.Errorf("region %q: %w", rg.Title, err))
			out[rg.Title] = ""
			continue
		}
		out[rg.Title] = strings.TrimSpace(text)
	}
	return out, errors.Join(errs...)
}

// Crop copies rect out of img into a new image whose bounds start at (0, 0).
func Crop(img image.Image, rect image.Rectangle) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

func writeCrop(dir, title string, img image.Image) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, cropFilename(title)))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func cropFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "region"
	}
	return name + ".png"
}
