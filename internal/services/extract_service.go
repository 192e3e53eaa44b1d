// Package services connects the HTTP surface to the OCR pipeline.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MaximilianIsing/OCR-Processing/internal/core/pdfmeta"
	"github.com/MaximilianIsing/OCR-Processing/internal/core/pipeline"
)

// ErrNotPDF marks uploads whose bytes are not a PDF regardless of what the
// multipart headers claimed.
var ErrNotPDF = errors.New("uploaded file is not a pdf")

// ExtractResult is what the HTTP layer returns to the caller.
type ExtractResult struct {
	Filename  string
	PageCount int
	Text      string
}

// ExtractService owns the upload-to-text flow: persist the multipart upload
// to a scratch file, validate it, run the pipeline on it, clean up.
type ExtractService struct {
	runner    *pipeline.Runner
	uploadDir string
}

// NewExtractService creates the service and its scratch upload directory.
func NewExtractService(runner *pipeline.Runner, uploadDir string) (*ExtractService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", uploadDir, err)
	}
	return &ExtractService{runner: runner, uploadDir: uploadDir}, nil
}

// Extract runs the OCR pipeline against one uploaded PDF. The uploaded
// bytes live on disk only for the duration of the call.
func (s *ExtractService) Extract(ctx context.Context, fileHeader *multipart.FileHeader) (*ExtractResult, error) {
	pdfPath, err := s.saveUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(pdfPath); err != nil {
			log.Warn().Err(err).Str("path", pdfPath).Msg("could not remove uploaded file")
		}
	}()

	if !looksLikePDF(pdfPath) {
		return nil, fmt.Errorf("%w: missing %%PDF signature", ErrNotPDF)
	}

	res, err := s.runner.Run(ctx, pdfPath, "")
	if err != nil {
		return nil, err
	}
	return &ExtractResult{
		Filename:  fileHeader.Filename,
		PageCount: res.PageCount,
		Text:      res.Text,
	}, nil
}

// saveUpload writes the multipart file under a collision-proof name.
func (s *ExtractService) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("upload_%d_%s.pdf", time.Now().Unix(), uuid.New().String()[:8])
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

func looksLikePDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 8)
	n, _ := f.Read(head)
	return pdfmeta.LooksLikePDF(head[:n])
}
