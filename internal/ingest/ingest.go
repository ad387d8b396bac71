// Package ingest discovers the PDF inputs of a batch, from explicit paths or by
// watching directories.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// Stats summarizes a Collect call.
type Stats struct {
	Scanned uint32 // files looked at
	Matched uint32 // PDFs returned
	Skipped uint32 // non-PDF or hidden entries
	Failed  uint32 // entries that could not be read
}

type CollectOptions struct {
	Recursive  bool // descend into subdirectories
	SkipHidden bool // ignore dot files and dot directories
}

// Collect expands files and directories into PDF documents. Explicit files keep their
// argument order; the PDFs of a directory follow in lexical path order. A path that
// does not exist is an error. A document reached twice is returned once.
func Collect(paths []string, opts CollectOptions) ([]entity.Document, Stats, error) {
	var (
		docs  []entity.Document
		stats Stats
		seen  = map[string]bool{}
	)
	add := func(path string, size int64) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		docs = append(docs, entity.NewDocument(path, size))
		stats.Matched++
	}

	for _, root := range paths {
		st, err := os.Stat(root)
		if err != nil {
			return nil, stats, common.NewAppError(common.CodeDocument, fmt.Sprintf("input %q", root), err)
		}
		if !st.IsDir() {
			stats.Scanned++
			if !AllowedExt(filepath.Ext(root)) {
				stats.Skipped++
				continue
			}
			add(root, st.Size())
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				stats.Failed++
				return nil // continue walking
			}
			if path == root {
				return nil
			}
			if opts.SkipHidden && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				stats.Skipped++
				return nil
			}
			if d.IsDir() {
				if !opts.Recursive {
					return filepath.SkipDir
				}
				return nil
			}
			stats.Scanned++
			if !AllowedExt(filepath.Ext(path)) {
				stats.Skipped++
				return nil
			}
			info, err := d.Info()
			if err != nil {
				stats.Failed++
				return nil
			}
			add(path, info.Size())
			return nil
		})
		if err != nil {
			return docs, stats, fmt.Errorf("walk: %w", err)
		}
	}
	return docs, stats, nil
}
