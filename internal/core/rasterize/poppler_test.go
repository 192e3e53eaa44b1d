package rasterize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopplerBuildArgsJPEG(t *testing.T) {
	p := NewPopplerRasterizer(Options{DPI: 150, Format: FormatJPEG, Quality: 85})
	args := p.buildArgs("/docs/in.pdf", "/tmp/run/page")
	assert.Equal(t, []string{
		"-r", "150",
		"-jpeg", "-jpegopt", "quality=85",
		"/docs/in.pdf", "/tmp/run/page",
	}, args)
}

func TestPopplerBuildArgsPNG(t *testing.T) {
	p := NewPopplerRasterizer(Options{DPI: 300, Format: FormatPNG, Quality: 85})
	args := p.buildArgs("in.pdf", "page")
	assert.Equal(t, []string{"-r", "300", "-png", "in.pdf", "page"}, args)
	assert.NotContains(t, args, "-jpegopt")
}

func TestPagesLineParsing(t *testing.T) {
	out := []byte(`Title:          Quarterly Report
Producer:       GPL Ghostscript 10.0
CreationDate:   Tue Jan  7 10:12:44 2025
Custom Metadata: no
Form:           none
Pages:          12
Encrypted:      no
Page size:      612 x 792 pts (letter)
File size:      418223 bytes`)

	m := pagesLine.FindSubmatch(out)
	require.NotNil(t, m)
	assert.Equal(t, "12", string(m[1]))
}

func TestPagesLineIgnoresOtherNumericLines(t *testing.T) {
	out := []byte("File size:      1234 bytes\nPage rot:       0\n")
	assert.Nil(t, pagesLine.FindSubmatch(out))
}

func TestOptionsExt(t *testing.T) {
	assert.Equal(t, "jpg", Options{Format: FormatJPEG}.ext())
	assert.Equal(t, "png", Options{Format: FormatPNG}.ext())
	assert.Equal(t, "jpg", Options{}.ext())
}
