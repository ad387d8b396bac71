package core

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/core/ocr"
	"github.com/joseph-ayodele/pdf-fields/internal/core/pdfinfo"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/extract"
)

const sampleText = "NOTA FISCAL\nNome: Ana Souza\nTotal: R$ 1.234,56\nCPF\n123.456.789-00\n"

var sampleRules = []entity.KeywordRule{
	{Keyword: "Nome:", Direction: constants.Right},
	{Keyword: "Total:", Direction: constants.Right, NumericOnly: true},
	{Keyword: "CPF", Direction: constants.Below},
	{Keyword: "Inexistente", Direction: constants.Right},
}

var sampleLayout = entity.Layout{
	{Title: "Emitente", X: 0, Y: 0, W: 10, H: 10},
	{Title: "Data", X: 20, Y: 0, W: 12, H: 10},
}

type fakes struct {
	textErr    error
	rasterErr  error
	ocrErr     error
	rasterHits atomic.Int32
}

func (f *fakes) text() extract.TextExtractor {
	return extract.TextFunc(func(context.Context, string) (extract.TextResult, error) {
		if f.textErr != nil {
			return extract.TextResult{}, f.textErr
		}
		return extract.TextResult{Text: sampleText, Pages: 1, Method: "fake"}, nil
	})
}

func (f *fakes) raster() extract.Rasterizer {
	return extract.RasterFunc(func(context.Context, string) (image.Image, error) {
		f.rasterHits.Add(1)
		if f.rasterErr != nil {
			return nil, f.rasterErr
		}
		return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
	})
}

func (f *fakes) regions() RegionExtractor {
	rec := extract.RecognizeFunc(func(_ context.Context, img image.Image, _ string) (string, error) {
		switch img.Bounds().Dx() {
		case 10:
			return " ACME LTDA \n", nil
		default:
			if f.ocrErr != nil {
				return "", f.ocrErr
			}
			return "01/02/2024", nil
		}
	})
	return ocr.NewFieldExtractor(ocr.FieldConfig{}, rec, nil)
}

func (f *fakes) processor(opts ...ProcessorOption) *Processor {
	opts = append([]ProcessorOption{WithInspector(nil)}, opts...)
	return NewProcessor(nil, f.text(), f.raster(), f.regions(), sampleRules, sampleLayout, opts...)
}

func values(r *entity.Record) map[string]entity.Value {
	out := map[string]entity.Value{}
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out[k] = v
	}
	return out
}

func TestProcessDocument_OK(t *testing.T) {
	f := &fakes{}
	rec := f.processor().ProcessDocument(context.Background(), entity.NewDocument("/in/nota.pdf", 10))

	assert.False(t, rec.Failed(), rec.Error)
	assert.Equal(t, []string{"Arquivo", "Nome:", "Total:", "CPF", "Inexistente", "Emitente", "Data"}, rec.Keys())
	assert.Equal(t, map[string]entity.Value{
		"Arquivo":     entity.Present("nota.pdf"),
		"Nome:":       entity.Present("Ana"),
		"Total:":      entity.Present("1.234,56"),
		"CPF":         entity.Present("123.456.789-00"),
		"Inexistente": entity.Missing(),
		"Emitente":    entity.Present("ACME LTDA"),
		"Data":        entity.Present("01/02/2024"),
	}, values(rec))
	assert.EqualValues(t, 1, f.rasterHits.Load(), "one raster per document")
}

func TestProcessDocument_TextFailure(t *testing.T) {
	f := &fakes{textErr: errors.New("pdftotext: exit status 1")}
	rec := f.processor().ProcessDocument(context.Background(), entity.NewDocument("bad.pdf", 0))

	assert.True(t, rec.Failed())
	assert.Equal(t, []string{"Arquivo"}, rec.Keys())
	assert.Contains(t, rec.Error, "text")
	assert.Contains(t, rec.Error, "exit status 1")
	assert.Zero(t, f.rasterHits.Load())
}

func TestProcessDocument_RasterFailureKeepsRuleValues(t *testing.T) {
	f := &fakes{rasterErr: errors.New("pdftoppm: killed")}
	rec := f.processor().ProcessDocument(context.Background(), entity.NewDocument("scan.pdf", 0))

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "rasterize")
	got := values(rec)
	assert.Equal(t, entity.Present("Ana"), got["Nome:"])
	assert.Equal(t, entity.Present(""), got["Emitente"])
	assert.Equal(t, entity.Present(""), got["Data"])
}

func TestProcessDocument_RegionFailureIsPartial(t *testing.T) {
	f := &fakes{ocrErr: errors.New("tesseract: crashed")}
	rec := f.processor().ProcessDocument(context.Background(), entity.NewDocument("a.pdf", 0))

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "Data")
	got := values(rec)
	assert.Equal(t, entity.Present("ACME LTDA"), got["Emitente"])
	assert.Equal(t, entity.Present(""), got["Data"])
	assert.Equal(t, entity.Present("1.234,56"), got["Total:"])
}

func TestProcessDocument_NoLayoutSkipsRaster(t *testing.T) {
	f := &fakes{}
	p := NewProcessor(nil, f.text(), f.raster(), f.regions(), sampleRules, nil, WithInspector(nil))
	rec := p.ProcessDocument(context.Background(), entity.NewDocument("a.pdf", 0))

	assert.False(t, rec.Failed())
	assert.Len(t, rec.Keys(), 1+len(sampleRules))
	assert.Zero(t, f.rasterHits.Load())
}

func TestProcessDocument_InspectFailure(t *testing.T) {
	f := &fakes{}
	inspect := func(string) (pdfinfo.Info, error) { return pdfinfo.Info{}, errors.New("not a pdf") }
	rec := f.processor(WithInspector(inspect)).ProcessDocument(context.Background(), entity.NewDocument("x.pdf", 0))

	require.True(t, rec.Failed())
	assert.Equal(t, []string{"Arquivo"}, rec.Keys())
	assert.Contains(t, rec.Error, "inspect")
}

func TestNewProcessor_FreezesConfiguration(t *testing.T) {
	f := &fakes{}
	rs := append([]entity.KeywordRule(nil), sampleRules...)
	p := NewProcessor(nil, f.text(), f.raster(), f.regions(), rs, sampleLayout, WithInspector(nil))
	rs[0].Keyword = "changed"

	assert.Equal(t, "Nome:", p.Rules()[0].Keyword)
	assert.Equal(t, sampleLayout, p.Layout())
}
