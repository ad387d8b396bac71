package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strconv"
)

// ErrOCRNotEnabled is returned by the in-process engine when the binary was built
// without the "ocr" tag.
var ErrOCRNotEnabled = errors.New("in-process OCR not enabled; rebuild with -tags ocr")

type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	PSM         int // 0 = tesseract default; 7 suits single-line regions
}

// Tesseract recognizes an image by handing a temporary PNG to the tesseract CLI.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, runner Runner, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

func (t *Tesseract) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	f, err := os.CreateTemp("", "pf-crop-*.png")
	if err != nil {
		return "", err
	}
	name := f.Name()
	defer func() {
		if err := os.Remove(name); err != nil {
			t.logger.Warn("failed to remove temp crop", "file", name, "error", err)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode crop: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	// tesseract <file> stdout -l <lang> [--psm N] [--tessdata-dir D]
	args := []string{name, "stdout", "-l", lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, t.logger, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
