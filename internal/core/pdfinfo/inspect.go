// Package pdfinfo checks that an input is a readable PDF before the external tools run.
package pdfinfo

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
)

// Info is what the processor needs to know about a PDF.
type Info struct {
	Pages    int
	FileSize int64
}

// Inspect parses the PDF structure with pdfcpu in relaxed mode. A file that cannot be
// parsed, or that has no pages, is reported as common.ErrUnsupported.
func Inspect(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return Info{}, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read PDF context: %w: %w", common.ErrUnsupported, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return Info{}, fmt.Errorf("failed to ensure page count: %w: %w", common.ErrUnsupported, err)
	}
	if ctx.PageCount < 1 {
		return Info{}, fmt.Errorf("pdf has no pages: %w", common.ErrUnsupported)
	}
	return Info{Pages: ctx.PageCount, FileSize: st.Size()}, nil
}
