// Package pdfmeta answers cheap questions about a PDF without rasterizing
// it: signature validation, page count, and whether the document already
// carries an extractable text layer.
package pdfmeta

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// LooksLikePDF reports whether data starts with the PDF file signature.
func LooksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// PageCount reads the page count with a pure-Go parser, without invoking
// any external tool.
func PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.NumPage(), nil
}

// EmbeddedText extracts the document's text layer page by page, in page
// order. Scanned documents typically yield little or nothing here; callers
// should treat short output as "no usable text layer" (see HasUsableText).
func EmbeddedText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i, err)
		}
		b.WriteString(content)
		b.WriteString(" ")
	}
	return b.String(), nil
}

// HasUsableText reports whether extracted text is substantial enough to
// stand in for OCR output.
func HasUsableText(s string, minChars int) bool {
	return len(strings.TrimSpace(s)) >= minChars
}
