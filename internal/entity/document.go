package entity

import (
	"path/filepath"
)

// Document is one PDF handed to the processor.
type Document struct {
	SourcePath string `json:"source_path"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"file_size"`
}

// NewDocument builds a Document whose Filename is the base name of path.
func NewDocument(path string, size int64) Document {
	return Document{
		SourcePath: path,
		Filename:   filepath.Base(path),
		FileSize:   size,
	}
}
