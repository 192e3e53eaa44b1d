// Package handlers exposes the service over HTTP.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MaximilianIsing/OCR-Processing/internal/core/pipeline"
	"github.com/MaximilianIsing/OCR-Processing/internal/services"
)

// Extractor is the slice of the extract service the handler needs.
type Extractor interface {
	Extract(ctx context.Context, fileHeader *multipart.FileHeader) (*services.ExtractResult, error)
}

// ExtractHandler serves the PDF upload endpoint.
type ExtractHandler struct {
	extractor      Extractor
	maxUploadBytes int64
}

// NewExtractHandler creates the handler with an upload cap in megabytes.
func NewExtractHandler(extractor Extractor, maxUploadMB int) *ExtractHandler {
	return &ExtractHandler{
		extractor:      extractor,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// ExtractText godoc
// @Summary Extract text from a PDF
// @Description Rasterizes every page, runs OCR on each, and returns the normalized text
// @Tags ocr
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "PDF document"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /extract-text [post]
func (h *ExtractHandler) ExtractText(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No PDF file provided",
			"message": "attach a PDF under the multipart field \"pdf\"",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid file type",
			"message": fmt.Sprintf("expected application/pdf, got %q", contentType),
		})
	}

	if fileHeader.Size > h.maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "File too large",
			"message": fmt.Sprintf("PDF must be %d MB or smaller", h.maxUploadBytes/(1024*1024)),
		})
	}

	log.Info().
		Str("filename", fileHeader.Filename).
		Int64("size", fileHeader.Size).
		Msg("📄 processing uploaded pdf")

	result, err := h.extractor.Extract(c.Context(), fileHeader)
	if err != nil {
		return h.extractError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"filename":   result.Filename,
		"pageCount":  result.PageCount,
		"textLength": len(result.Text),
		"text":       result.Text,
	})
}

// ErrorHandler answers errors Fiber raises outside the route handlers in the
// same JSON shape the handlers use. The transport refuses bodies above
// BodyLimit before any route runs, so the oversize rejection is mapped here
// rather than in ExtractText.
func ErrorHandler(maxUploadMB int) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "File too large",
				"message": fmt.Sprintf("PDF must be %d MB or smaller", maxUploadMB),
			})
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.Error().Err(err).Msg("unhandled request error")
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

// extractError maps pipeline failure classes onto HTTP statuses: rejected
// inputs are client errors, everything else is a server error with a
// human-readable message.
func (h *ExtractHandler) extractError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrPageLimitExceeded):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "PDF exceeds page limit",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrNotPDF):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid file type",
			"message": err.Error(),
		})
	default:
		log.Error().Err(err).Msg("text extraction failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Text extraction failed",
			"message": err.Error(),
		})
	}
}
