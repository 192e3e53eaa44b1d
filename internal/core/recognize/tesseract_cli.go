package recognize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// TesseractCLIProvider shells out to the tesseract binary for every image,
// for hosts where linking libtesseract is not an option. Handles carry no
// process state, so they are trivially reusable.
type TesseractCLIProvider struct {
	cfg  Config
	path string
}

// NewTesseractCLIProvider creates a provider backed by the tesseract command
// line tool, which must be on PATH.
func NewTesseractCLIProvider(cfg Config) *TesseractCLIProvider {
	return &TesseractCLIProvider{cfg: cfg, path: "tesseract"}
}

// Name returns the provider name.
func (p *TesseractCLIProvider) Name() string {
	return "tesseract-cli"
}

// NewHandle returns a handle bound to this provider's configuration.
func (p *TesseractCLIProvider) NewHandle() (Handle, error) {
	return &cliHandle{cfg: p.cfg, path: p.path}, nil
}

type cliHandle struct {
	cfg  Config
	path string
}

func (h *cliHandle) Recognize(ctx context.Context, image []byte) (string, error) {
	tmp, err := os.CreateTemp("", "ocr-page-*.img")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}

	outBase := tmpPath + "-out"
	defer os.Remove(outBase + ".txt")

	cmd := exec.CommandContext(ctx, h.path, buildCLIArgs(h.cfg, tmpPath, outBase)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	recognized, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("read tesseract output: %w", err)
	}
	return strings.TrimSpace(string(recognized)), nil
}

func (h *cliHandle) Close() error {
	return nil
}

// buildCLIArgs assembles one tesseract invocation. The trailing quiet and
// txt config names suppress banner output and disable every renderer except
// plain text.
func buildCLIArgs(cfg Config, imagePath, outBase string) []string {
	args := []string{imagePath, outBase, "-l", cfg.Language, "--psm", strconv.Itoa(cfg.PageSegMode)}
	if cfg.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(cfg.DPI))
	}
	if cfg.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+cfg.Whitelist)
	}
	return append(args, "quiet", "txt")
}
