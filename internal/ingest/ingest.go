// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns an uploaded company document into plain text.
// PDFs are read page by page; everything else must be UTF-8 text.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DocumentKind selects the extraction path for a RawDocument.
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindText DocumentKind = "text"
)

// RawDocument is an uploaded file held in memory until it is extracted.
type RawDocument struct {
	Name string
	Kind DocumentKind
	Data []byte
}

// ExtractionError reports a PDF that could not be parsed (corrupt,
// encrypted, or using unsupported features).
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "failed to extract PDF content: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// DecodeError reports text input that is not valid UTF-8.
type DecodeError struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("document is not valid UTF-8: invalid byte sequence at offset %d", e.Offset)
}

// KindForFilename returns KindPDF for names ending in ".pdf" (any case) and
// KindText for everything else.
func KindForFilename(name string) DocumentKind {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return KindPDF
	}
	return KindText
}

// Extract returns the text content of doc according to its kind.
func Extract(doc RawDocument) (string, error) {
	if doc.Kind == KindPDF {
		return ExtractPDF(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	}
	return DecodeText(doc.Data)
}

// ExtractFile reads path and extracts it according to its extension.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Extract(RawDocument{
		Name: filepath.Base(path),
		Kind: KindForFilename(path),
		Data: data,
	})
}

// ExtractPDF concatenates the plain text of every page, each followed by a
// newline, and trims the result. Any parser failure, including a panic inside
// the parser, is returned as an *ExtractionError.
func ExtractPDF(r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = &ExtractionError{Err: fmt.Errorf("%v", p)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}

// ExtractPDFFile opens path and extracts it with ExtractPDF.
func ExtractPDFFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return ExtractPDF(f, info.Size())
}

// DecodeText returns data as a string when it is valid UTF-8. A byte order
// mark is kept as-is.
func DecodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	for off := 0; off < len(data); {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size <= 1 {
			return "", &DecodeError{Offset: off}
		}
		off += size
	}
	return "", &DecodeError{Offset: len(data)}
}

// ReadTextFile reads path and decodes it with DecodeText.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeText(data)
}
