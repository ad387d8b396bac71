package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/tiff"

	"github.com/joseph-ayodele/pdf-fields/constants"
)

// Raster formats produced by pdftoppm.
const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"
)

type PdftoppmConfig struct {
	Binary string // binary name or absolute path; if empty -> "pdftoppm"
	DPI    int    // default 300; layout coordinates refer to this resolution
	Format string // "png" (default) | "tiff"
}

// Pdftoppm renders the first page of a PDF with poppler's pdftoppm.
type Pdftoppm struct {
	cfg    PdftoppmConfig
	runner Runner
	logger *slog.Logger
}

func NewPdftoppm(cfg PdftoppmConfig, runner Runner, logger *slog.Logger) *Pdftoppm {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner()
	}
	if cfg.Binary == "" {
		cfg.Binary = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = constants.DefaultDPI
	}
	if cfg.Format == "" {
		cfg.Format = FormatPNG
	}
	return &Pdftoppm{cfg: cfg, runner: runner, logger: logger}
}

// RasterizeFirstPage renders page 1 and decodes it. The temporary files are removed
// before returning; the caller owns the decoded image.
func (p *Pdftoppm) RasterizeFirstPage(ctx context.Context, path string) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "pf-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	flag, ext := "-png", ".png"
	if p.cfg.Format == FormatTIFF {
		flag, ext = "-tiff", ".tif"
	}

	// pdftoppm -r 300 -f 1 -l 1 -singlefile -png <in.pdf> <tmp/page>
	_, errb, err := p.runner.Run(ctx, p.cfg.Binary, p.logger,
		"-r", strconv.Itoa(p.cfg.DPI), "-f", "1", "-l", "1", "-singlefile", flag, path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	data, err := os.ReadFile(prefix + ext)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image: %w", err)
	}
	img, err := DecodeRaster(bytes.NewReader(data), p.cfg.Format)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("page rasterized", "path", path, "dpi", p.cfg.DPI, "bounds", img.Bounds().String())
	return img, nil
}

// DecodeRaster decodes a PNG or TIFF page image.
func DecodeRaster(r io.Reader, format string) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG, "":
		img, err = png.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported raster format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s raster: %w", format, err)
	}
	return img, nil
}
