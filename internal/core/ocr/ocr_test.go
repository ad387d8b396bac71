package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

type call struct {
	name string
	args []string
}

// fakeRunner records calls and answers through fn.
type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil, nil
	}
	return f.fn(name, args)
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "", NormalizeText(""))
	assert.Equal(t, "a\nb\nc\n", NormalizeText("a\r\nb\rc\n"))
	assert.Equal(t, "page one\npage two\n", NormalizeText("page one\n\fpage two\n\f"))
	assert.Equal(t, "  Total:   10  \n", NormalizeText("  Total:   10  \n"))
}

func TestPdftotext_ExtractText(t *testing.T) {
	r := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return []byte("Nome: Ana\r\n\fTotal: 10\n\f"), nil, nil
	}}
	p := NewPdftotext(PdftotextConfig{}, r, nil)

	res, err := p.ExtractText(context.Background(), "/in/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Nome: Ana\nTotal: 10\n", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "pdftotext", res.Method)

	require.Len(t, r.calls, 1)
	assert.Equal(t, "pdftotext", r.calls[0].name)
	assert.Equal(t, []string{"-enc", "UTF-8", "-eol", "unix", "/in/a.pdf", "-"}, r.calls[0].args)
}

func TestPdftotext_LayoutFlagAndFailure(t *testing.T) {
	r := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: broken xref"), errors.New("exit status 1")
	}}
	p := NewPdftotext(PdftotextConfig{Binary: "/usr/bin/pdftotext", Layout: true}, r, nil)

	res, err := p.ExtractText(context.Background(), "bad.pdf")
	require.Error(t, err)
	assert.Contains(t, res.Warnings, "Syntax Error: broken xref")
	assert.Equal(t, "/usr/bin/pdftotext", r.calls[0].name)
	assert.Equal(t, "-layout", r.calls[0].args[0])
}

func TestPdftoppm_RasterizeFirstPagePNG(t *testing.T) {
	r := &fakeRunner{}
	r.fn = func(_ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		writePNG(t, prefix+".png", solid(40, 20, color.White))
		return nil, nil, nil
	}
	p := NewPdftoppm(PdftoppmConfig{}, r, nil)

	img, err := p.RasterizeFirstPage(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())

	require.Len(t, r.calls, 1)
	args := r.calls[0].args
	assert.Equal(t, []string{"-r", "300", "-f", "1", "-l", "1", "-singlefile", "-png", "doc.pdf"}, args[:len(args)-1])
	_, statErr := os.Stat(filepath.Dir(args[len(args)-1]))
	assert.True(t, os.IsNotExist(statErr), "temp dir is removed")
}

func TestPdftoppm_RasterizeFirstPageTIFF(t *testing.T) {
	r := &fakeRunner{}
	r.fn = func(_ string, args []string) ([]byte, []byte, error) {
		f, err := os.Create(args[len(args)-1] + ".tif")
		require.NoError(t, err)
		require.NoError(t, tiff.Encode(f, solid(8, 6, color.Black), nil))
		require.NoError(t, f.Close())
		return nil, nil, nil
	}
	p := NewPdftoppm(PdftoppmConfig{DPI: 150, Format: FormatTIFF}, r, nil)

	img, err := p.RasterizeFirstPage(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	assert.Contains(t, r.calls[0].args, "-tiff")
	assert.Equal(t, "150", r.calls[0].args[1])
}

func TestPdftoppm_Failures(t *testing.T) {
	failing := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("I/O Error"), errors.New("exit status 1")
	}}
	_, err := NewPdftoppm(PdftoppmConfig{}, failing, nil).RasterizeFirstPage(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I/O Error")

	silent := &fakeRunner{}
	_, err = NewPdftoppm(PdftoppmConfig{}, silent, nil).RasterizeFirstPage(context.Background(), "x.pdf")
	assert.ErrorContains(t, err, "no image")
}

func TestDecodeRaster_UnknownFormat(t *testing.T) {
	_, err := DecodeRaster(nil, "bmp")
	assert.Error(t, err)
}

func TestTesseract_Recognize(t *testing.T) {
	r := &fakeRunner{}
	r.fn = func(_ string, args []string) ([]byte, []byte, error) {
		f, err := os.Open(args[0])
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())
		return []byte("  JOÃO DA SILVA\n\f"), nil, nil
	}
	tess := NewTesseract(TesseractConfig{PSM: 7, TessdataDir: "/td"}, r, nil)

	text, err := tess.Recognize(context.Background(), solid(5, 3, color.White), "por")
	require.NoError(t, err)
	assert.Equal(t, "  JOÃO DA SILVA\n\f", text)

	args := r.calls[0].args
	assert.Equal(t, []string{"stdout", "-l", "por", "--psm", "7", "--tessdata-dir", "/td"}, args[1:])
	_, statErr := os.Stat(args[0])
	assert.True(t, os.IsNotExist(statErr), "temp crop is removed")
}

func TestTesseract_Failure(t *testing.T) {
	r := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Failed loading language 'xyz'"), errors.New("exit status 1")
	}}
	_, err := NewTesseract(TesseractConfig{}, r, nil).Recognize(context.Background(), solid(2, 2, color.White), "xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xyz")
	assert.Equal(t, "tesseract", r.calls[0].name)
}

func TestExecRunner(t *testing.T) {
	stdout, stderr, err := ExecRunner().Run(context.Background(), "sh", nil, "-c", "printf out; printf err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out", string(stdout))
	assert.Equal(t, "err", string(stderr))

	_, _, err = ExecRunner().Run(context.Background(), "pdf-fields-no-such-binary", nil)
	assert.Error(t, err)
}

func TestPdftotext_DefaultsToExecRunner(t *testing.T) {
	p := NewPdftotext(PdftotextConfig{Binary: "pdf-fields-no-such-binary"}, nil, nil)
	_, err := p.ExtractText(context.Background(), filepath.Join(t.TempDir(), "a.pdf"))
	assert.Error(t, err)
}
