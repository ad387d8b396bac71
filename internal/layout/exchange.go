// Package layout reads and writes the layout exchange format and checks a rule/layout
// configuration before it is applied to a batch.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

type region struct {
	Title  string        `json:"title"`
	Coords []json.Number `json:"coords"`
}

type exportRegion struct {
	Title  string `json:"title"`
	Coords [4]int `json:"coords"`
}

func importError(msg string, err error) error {
	return common.NewAppError(common.CodeLayout, msg, errors.Join(common.ErrLayoutImport, err))
}

// Import decodes an exchange document. The document is checked against the exchange
// schema first; any failure is reported as common.ErrLayoutImport.
func Import(r io.Reader) (entity.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, importError("read layout", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, importError("parse layout json", err)
	}
	if err := layoutSchema.Validate(doc); err != nil {
		return nil, importError("layout does not match exchange format", err)
	}

	var raw []region
	dec = json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, importError("decode layout", err)
	}

	out := make(entity.Layout, 0, len(raw))
	for i, rg := range raw {
		var c [4]int
		for j, n := range rg.Coords {
			v, err := toInt(n)
			if err != nil {
				return nil, importError(fmt.Sprintf("region %d (%q) coords[%d]", i, rg.Title, j), err)
			}
			c[j] = v
		}
		out = append(out, entity.Region{Title: rg.Title, X: c[0], Y: c[1], W: c[2], H: c[3]})
	}
	return out, nil
}

// toInt accepts integral JSON numbers in the int32 range, including canvas output
// such as 10.0.
func toInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, fmt.Errorf("coordinate %s is out of range", n)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %s is not an integer", n)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("coordinate %s is out of range", n)
	}
	return int(f), nil
}

// Export writes l in the exchange format. Import(Export(l)) reproduces l exactly.
func Export(w io.Writer, l entity.Layout) error {
	out := make([]exportRegion, len(l))
	for i, r := range l {
		out[i] = exportRegion{Title: r.Title, Coords: [4]int{r.X, r.Y, r.W, r.H}}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// ImportFile reads a layout from path.
func ImportFile(path string) (entity.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, importError("open layout file", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return Import(f)
}

// ExportFile writes l to path, replacing any existing file.
func ExportFile(path string, l entity.Layout) error {
	var buf bytes.Buffer
	if err := Export(&buf, l); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}
