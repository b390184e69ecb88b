// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal PDF with one Helvetica text line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestExtractPDF(t *testing.T) {
	data := buildPDF(t, "Acme Corp", "Widgets for everyone")

	text, err := ExtractPDF(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	assert.Contains(t, text, "Acme Corp")
	assert.Contains(t, text, "Widgets for everyone")
	assert.Less(t, bytes.Index([]byte(text), []byte("Acme")), bytes.Index([]byte(text), []byte("Widgets")))
	assert.Equal(t, text, trimmed(text))
}

func TestExtractPDF_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a pdf", []byte("hello, I am plain text")},
		{"empty", nil},
		{"truncated", buildPDF(t, "Acme Corp")[:60]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractPDF(bytes.NewReader(tt.data), int64(len(tt.data)))
			require.Error(t, err)

			var ee *ExtractionError
			require.True(t, errors.As(err, &ee), "got %T", err)
			assert.Contains(t, err.Error(), "failed to extract PDF content")
		})
	}
}

func TestExtractPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(t, "Globex"), 0o644))

	text, err := ExtractPDFFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Globex")
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		want       string
		wantOffset int
		wantErr    bool
	}{
		{name: "ascii", data: []byte("Acme Corp\nAbout: widgets"), want: "Acme Corp\nAbout: widgets"},
		{name: "multibyte", data: []byte("Société Générale"), want: "Société Générale"},
		{name: "bom kept", data: []byte("\xef\xbb\xbfAcme"), want: "\ufeffAcme"},
		{name: "latin1 byte", data: []byte("Caf\xe9 Ltd"), wantErr: true, wantOffset: 3},
		{name: "leading invalid", data: []byte{0xff, 'a'}, wantErr: true, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			if tt.wantErr {
				var de *DecodeError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, tt.wantOffset, de.Offset)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindForFilename(t *testing.T) {
	tests := []struct {
		name string
		want DocumentKind
	}{
		{"profile.pdf", KindPDF},
		{"PROFILE.PDF", KindPDF},
		{"dir/report.Pdf", KindPDF},
		{"profile.txt", KindText},
		{"profile.md", KindText},
		{"pdf", KindText},
		{"", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindForFilename(tt.name))
		})
	}
}

func TestExtractDispatch(t *testing.T) {
	pdfData := buildPDF(t, "Initech")

	text, err := Extract(RawDocument{Name: "a.pdf", Kind: KindPDF, Data: pdfData})
	require.NoError(t, err)
	assert.Contains(t, text, "Initech")

	text, err = Extract(RawDocument{Name: "a.txt", Kind: KindText, Data: []byte("Initech\n")})
	require.NoError(t, err)
	assert.Equal(t, "Initech\n", text)

	_, err = Extract(RawDocument{Name: "a.pdf", Kind: KindPDF, Data: []byte("Initech")})
	var ee *ExtractionError
	assert.True(t, errors.As(err, &ee))
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "profile.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Umbrella Corp"), 0o644))

	text, err := ExtractFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "Umbrella Corp", text)

	_, err = ExtractFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func trimmed(s string) string {
	return string(bytes.TrimSpace([]byte(s)))
}
