package pdfmeta

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikePDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"valid header", []byte("%PDF-1.7\n%âãÏÓ"), true},
		{"valid header minimal", []byte("%PDF-"), true},
		{"png header", []byte("\x89PNG\r\n\x1a\n"), false},
		{"plain text", []byte("hello"), false},
		{"empty", nil, false},
		{"truncated magic", []byte("%PD"), false},
		{"magic not at start", []byte(" %PDF-1.4"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikePDF(tt.data))
		})
	}
}

func TestHasUsableText(t *testing.T) {
	assert.True(t, HasUsableText("enough characters to matter here", 10))
	assert.False(t, HasUsableText("short", 10))
	assert.False(t, HasUsableText("   \n\t   ", 1))
	assert.True(t, HasUsableText("  x  ", 1))
	assert.True(t, HasUsableText("", 0))
}

func TestPageCountReadsPageTree(t *testing.T) {
	n, err := PageCount(minimalPDF(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPageCountRejectsNonPDF(t *testing.T) {
	_, err := PageCount("testdata-does-not-exist.pdf")
	assert.Error(t, err)
}

// minimalPDF writes a parseable PDF with the given number of empty pages,
// recording each object's byte offset so the xref table is exact.
func minimalPDF(t *testing.T, pages int) string {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 0, pages+2)
	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n", i+3))
	}

	xrefAt := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefAt)

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}
