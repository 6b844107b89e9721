// Package normalize converts raw document bytes of heterogeneous formats
// into a single plain-text representation, or tags the bytes for native
// ingestion by the LLM provider when it understands the format directly.
package normalize

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the detected document format.
type Format int

const (
	FormatUnsupported Format = iota
	FormatText
	FormatMarkdown
	FormatHTML
	FormatCSV
	FormatPDF
	FormatDOCX
	FormatXLSX
	FormatXLS
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	case FormatCSV:
		return "csv"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	}
	return "unsupported"
}

// UnsupportedFormatError reports a document outside the allow-list.
type UnsupportedFormatError struct {
	Filename string
	MIME     string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %s (%s)", filepath.Ext(e.Filename), e.MIME)
}

// Result is the normalizer output: extracted plain text, or a byte blob
// tagged for native ingestion by the provider.
type Result struct {
	Text     string
	Native   bool
	Blob     []byte
	BlobMIME string
}

// Options controls normalization behavior.
type Options struct {
	// PDFNativeIngest passes PDF bytes straight to the provider instead
	// of extracting text locally.
	PDFNativeIngest bool
}

var extFormats = map[string]Format{
	".txt":      FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".csv":      FormatCSV,
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".xlsx":     FormatXLSX,
	".xls":      FormatXLS,
}

var mimeFormats = map[string]Format{
	"text/plain":               FormatText,
	"text/markdown":            FormatMarkdown,
	"text/html":                FormatHTML,
	"text/csv":                 FormatCSV,
	"application/pdf":          FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       FormatXLSX,
	"application/vnd.ms-excel": FormatXLS,
}

// DetectFormat resolves the format from the filename extension, falling
// back to the MIME type for extension-less sources.
func DetectFormat(filename, mimeType string) Format {
	if f, ok := extFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	if f, ok := mimeFormats[mimeType]; ok {
		return f
	}
	return FormatUnsupported
}

// SupportedFile reports whether the filename extension is on the allow-list.
func SupportedFile(filename string) bool {
	_, ok := extFormats[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Normalize dispatches on the detected format. Extraction is deterministic:
// identical bytes always yield identical text, substructures (sheets, pages,
// paragraphs) are visited in stored order. An unreadable substructure fails
// the whole document rather than silently omitting content.
func Normalize(data []byte, filename, mimeType string, opts Options) (*Result, error) {
	switch DetectFormat(filename, mimeType) {
	case FormatText:
		return &Result{Text: extractText(data)}, nil
	case FormatMarkdown:
		return extractMarkdown(data)
	case FormatHTML:
		return extractHTML(data)
	case FormatCSV:
		return extractCSV(data)
	case FormatPDF:
		if opts.PDFNativeIngest {
			return &Result{Native: true, Blob: data, BlobMIME: "application/pdf"}, nil
		}
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatXLSX:
		return extractXLSX(data)
	case FormatXLS:
		return extractXLS(data)
	}
	return nil, &UnsupportedFormatError{Filename: filename, MIME: mimeType}
}
