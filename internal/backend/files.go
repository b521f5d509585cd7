package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// PDFMediaType is the only media type the backend ingests.
const PDFMediaType = "application/pdf"

// File is a local document staged for upload.
type File struct {
	Name      string
	Path      string
	MediaType string
}

// OpenFile stats path and detects its media type from content.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("detect media type of %s: %w", path, err)
	}
	return File{
		Name:      filepath.Base(path),
		Path:      path,
		MediaType: mt.String(),
	}, nil
}

// IsPDF reports whether the file's media type is exactly application/pdf.
func (f File) IsPDF() bool {
	return f.MediaType == PDFMediaType
}

// ValidateBatch returns a *ValidationError for the first non-PDF file.
func ValidateBatch(files []File) error {
	for _, f := range files {
		if !f.IsPDF() {
			return &ValidationError{File: f.Name, MediaType: f.MediaType}
		}
	}
	return nil
}
