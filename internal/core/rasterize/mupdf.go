package rasterize

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// MuPDFRasterizer renders in-process through the MuPDF library. No external
// binaries needed, at the cost of linking MuPDF into the build.
type MuPDFRasterizer struct {
	opts Options
}

// NewMuPDFRasterizer creates a MuPDF-backed rasterizer.
func NewMuPDFRasterizer(opts Options) *MuPDFRasterizer {
	return &MuPDFRasterizer{opts: opts}
}

// Name returns the backend name.
func (m *MuPDFRasterizer) Name() string {
	return "mupdf"
}

// PageCount opens the document and reports its page count.
func (m *MuPDFRasterizer) PageCount(ctx context.Context, pdfPath string) (int, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// Rasterize renders every page into outDir. Pages are rendered sequentially;
// a fitz document is not safe for concurrent use.
func (m *MuPDFRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]PageImage, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]PageImage, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(m.opts.DPI))
		if err != nil {
			return nil, fmt.Errorf("render page %d of %s: %w", i+1, pdfPath, err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("page-%d.%s", i+1, m.opts.ext()))
		if err := m.writeImage(path, img); err != nil {
			return nil, err
		}
		pages = append(pages, PageImage{Index: i, Path: path})
	}
	return pages, nil
}

func (m *MuPDFRasterizer) writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	var encErr error
	switch m.opts.Format {
	case FormatPNG:
		encErr = png.Encode(f, img)
	default:
		encErr = jpeg.Encode(f, img, &jpeg.Options{Quality: m.opts.Quality})
	}
	if encErr != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, encErr)
	}
	return f.Close()
}
