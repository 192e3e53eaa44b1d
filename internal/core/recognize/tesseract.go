package recognize

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractProvider recognizes through the linked libtesseract via gosseract.
// Each handle owns one gosseract client; clients are not safe for concurrent
// use, so every pipeline slot gets its own.
type TesseractProvider struct {
	cfg Config
}

// NewTesseractProvider creates a provider backed by the native tesseract
// library.
func NewTesseractProvider(cfg Config) *TesseractProvider {
	return &TesseractProvider{cfg: cfg}
}

// Name returns the provider name.
func (p *TesseractProvider) Name() string {
	return "tesseract"
}

// NewHandle creates and configures a gosseract client. The caller owns the
// handle and must Close it.
func (p *TesseractProvider) NewHandle() (Handle, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(p.cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("set language %q: %w", p.cfg.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(p.cfg.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode %d: %w", p.cfg.PageSegMode, err)
	}
	if p.cfg.Whitelist != "" {
		if err := client.SetWhitelist(p.cfg.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("set character whitelist: %w", err)
		}
	}
	if p.cfg.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(p.cfg.DPI)); err != nil {
			client.Close()
			return nil, fmt.Errorf("set dpi hint: %w", err)
		}
	}
	return &tesseractHandle{client: client}, nil
}

// ocrClient is the part of gosseract.Client the handle drives. The real
// client needs libtesseract at runtime, so handle tests substitute their own.
type ocrClient interface {
	SetImageFromBytes(data []byte) error
	Text() (string, error)
	Close() error
}

type tesseractHandle struct {
	client    ocrClient
	closeOnce sync.Once
	closeErr  error
}

func (h *tesseractHandle) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := h.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	out, err := h.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	// Text blocks in C and cannot be interrupted mid-call; report an expired
	// deadline after the fact so a late page is recorded as a failure.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (h *tesseractHandle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = h.client.Close()
	})
	return h.closeErr
}
