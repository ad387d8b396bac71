package export

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/table"
)

func sampleTable() table.Table {
	ok := entity.NewRecord("a.pdf")
	ok.Set("Total:", entity.Present("1.234,56"))
	ok.Set("CNPJ", entity.Present("12.345.678/0001-90"))

	bad := entity.NewRecord("b.pdf")
	bad.Fail(errors.New("text: corrupt xref"))

	return table.Assemble(
		[]entity.KeywordRule{{Keyword: "Total:"}},
		entity.Layout{{Title: "CNPJ"}},
		[]*entity.Record{ok, bad},
	)
}

func TestExportXLSX(t *testing.T) {
	data, err := NewService(nil).ExportXLSX(context.Background(), sampleTable())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultsSheet, ErrorsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Arquivo", "Total:", "CNPJ"}, rows[0])
	assert.Equal(t, []string{"a.pdf", "1.234,56", "12.345.678/0001-90"}, rows[1])
	assert.Equal(t, "b.pdf", rows[2][0])

	errRows, err := f.GetRows(ErrorsSheet)
	require.NoError(t, err)
	require.Len(t, errRows, 2)
	assert.Equal(t, []string{"b.pdf", "FAILED", "text: corrupt xref"}, errRows[1])
}

func TestExportXLSX_NoFailuresHasOneSheet(t *testing.T) {
	rec := entity.NewRecord("only.pdf")
	tbl := table.Assemble(nil, nil, []*entity.Record{rec})

	data, err := NewService(nil).ExportXLSX(context.Background(), tbl)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{ResultsSheet}, f.GetSheetList())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultado_ocr.xlsx")
	require.NoError(t, NewService(nil).WriteFile(context.Background(), path, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(ResultsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1.234,56", v)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	long := strings.Repeat("é", maxCellChars+10)
	assert.Len(t, []rune(truncate(long, maxCellChars)), maxCellChars)
}
