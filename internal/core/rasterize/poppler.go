package rasterize

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// PopplerRasterizer renders through the poppler-utils command line tools:
// pdfinfo for page counts, pdftoppm for page images. Both binaries must be
// on PATH.
type PopplerRasterizer struct {
	opts         Options
	pdftoppmPath string
	pdfinfoPath  string
}

// NewPopplerRasterizer creates a poppler-backed rasterizer.
func NewPopplerRasterizer(opts Options) *PopplerRasterizer {
	return &PopplerRasterizer{
		opts:         opts,
		pdftoppmPath: "pdftoppm",
		pdfinfoPath:  "pdfinfo",
	}
}

// Name returns the backend name.
func (p *PopplerRasterizer) Name() string {
	return "poppler"
}

var pagesLine = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)

// PageCount reads the page count from pdfinfo output without rendering
// anything.
func (p *PopplerRasterizer) PageCount(ctx context.Context, pdfPath string) (int, error) {
	out, err := exec.CommandContext(ctx, p.pdfinfoPath, pdfPath).CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo %s: %w (%s)", pdfPath, err, strings.TrimSpace(string(out)))
	}
	m := pagesLine.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("pdfinfo output for %s has no Pages line", pdfPath)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("pdfinfo page count for %s: %w", pdfPath, err)
	}
	return n, nil
}

// Rasterize renders every page into outDir and returns the images in page
// order, recovered from the page numbers pdftoppm embeds in its filenames.
func (p *PopplerRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]PageImage, error) {
	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, p.pdftoppmPath, p.buildArgs(pdfPath, prefix)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm %s: %w (%s)", pdfPath, err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "-*." + p.opts.ext())
	if err != nil {
		return nil, fmt.Errorf("collect rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images for %s", pdfPath)
	}
	return orderPages(matches)
}

func (p *PopplerRasterizer) buildArgs(pdfPath, prefix string) []string {
	args := []string{"-r", strconv.Itoa(p.opts.DPI)}
	switch p.opts.Format {
	case FormatPNG:
		args = append(args, "-png")
	default:
		args = append(args, "-jpeg", "-jpegopt", "quality="+strconv.Itoa(p.opts.Quality))
	}
	return append(args, pdfPath, prefix)
}
