package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/table"
)

const (
	ResultsSheet = "Resultados"
	ErrorsSheet  = "Erros"

	// maxCellChars is the XLSX limit on characters in one cell.
	maxCellChars = 32767
)

// Service renders result tables as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportXLSX returns the workbook as bytes. The results sheet holds exactly the table
// columns. Failed records are also listed, with their error, on a separate sheet.
func (s *Service) ExportXLSX(ctx context.Context, t table.Table) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(ResultsSheet)
	f.SetActiveSheet(activeIndex)

	if err := writeRow(f, ResultsSheet, 1, t.Columns); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		if err := writeRow(f, ResultsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if n := len(t.Columns); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		_ = f.SetColWidth(ResultsSheet, "A", last, 24)
	}

	failed := t.Failed()
	if len(failed) > 0 {
		if _, err := f.NewSheet(ErrorsSheet); err != nil {
			return nil, err
		}
		if err := writeRow(f, ErrorsSheet, 1, []string{"Arquivo", "Status", "Erro"}); err != nil {
			return nil, err
		}
		for i, r := range failed {
			if err := writeRow(f, ErrorsSheet, i+2, []string{r.Filename(), string(r.Status), r.Error}); err != nil {
				return nil, err
			}
		}
		_ = f.SetColWidth(ErrorsSheet, "A", "A", 32)
		_ = f.SetColWidth(ErrorsSheet, "C", "C", 80)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", common.RunIDFromContext(ctx),
		"rows", len(t.Rows),
		"failed", len(failed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile exports t to path, replacing any existing file.
func (s *Service) WriteFile(ctx context.Context, path string, t table.Table) error {
	data, err := s.ExportXLSX(ctx, t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, truncate(v, maxCellChars)); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
