// Package table lays batch records out as rows under a fixed column set.
package table

import (
	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// Table is the result of a batch: one row per record, cells aligned with Columns.
type Table struct {
	Columns []string
	Rows    [][]string
	// Records are the source records, row for row, kept for status and error reporting.
	Records []*entity.Record
}

// Columns returns the filename column, then rule keywords, then region titles, each in
// declaration order. A repeated key keeps its first position.
func Columns(rules []entity.KeywordRule, l entity.Layout) []string {
	cols := []string{constants.FilenameColumn}
	seen := map[string]bool{constants.FilenameColumn: true}
	add := func(k string) {
		if seen[k] {
			return
		}
		seen[k] = true
		cols = append(cols, k)
	}
	for _, r := range rules {
		add(r.Keyword)
	}
	for _, rg := range l {
		add(rg.Title)
	}
	return cols
}

// Assemble builds the table. Rows follow record order; a key the record lacks, or an
// absent value, becomes an empty cell.
func Assemble(rules []entity.KeywordRule, l entity.Layout, records []*entity.Record) Table {
	return FromColumns(Columns(rules, l), records)
}

// FromColumns builds the table for a column set recorded earlier, such as a stored run.
func FromColumns(cols []string, records []*entity.Record) Table {
	t := Table{
		Columns: cols,
		Rows:    make([][]string, 0, len(records)),
		Records: records,
	}
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := rec.Get(c); ok {
				row[i] = v.Cell()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Failed returns the records that did not complete.
func (t Table) Failed() []*entity.Record {
	var out []*entity.Record
	for _, r := range t.Records {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
