// Package rasterize turns PDF documents into ordered page images for OCR.
// Backends hide whether the work happens in an external poppler process or
// in-process through the MuPDF library; callers depend only on Rasterizer.
package rasterize

import "context"

// Image formats a backend can emit.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// PageImage is one rasterized page on disk. Index is 0-based and stable for
// the rest of the run; Path lives inside the run's working directory.
type PageImage struct {
	Index int
	Path  string
}

// Options fix the rendering quality for a whole run. Lower DPI and quality
// trade OCR accuracy for throughput and memory.
type Options struct {
	DPI     int    // render resolution, e.g. 150
	Format  string // FormatJPEG or FormatPNG
	Quality int    // JPEG quality 1-100, ignored for PNG
}

func (o Options) ext() string {
	if o.Format == FormatPNG {
		return "png"
	}
	return "jpg"
}

// Rasterizer is the capability the pipeline needs from a PDF renderer.
// PageCount must be cheap relative to Rasterize so oversized documents can
// be rejected before any page is rendered.
type Rasterizer interface {
	PageCount(ctx context.Context, pdfPath string) (int, error)
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]PageImage, error)
	Name() string
}
