package handlers

import "github.com/gofiber/fiber/v2"

// RootHandler describes the service and its endpoints.
type RootHandler struct{}

// NewRootHandler creates the root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// GetRoot godoc
// @Summary Service discovery
// @Description Lists the endpoints this service exposes
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *RootHandler) GetRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "PDF text extraction service",
		"endpoints": fiber.Map{
			"POST /extract-text": "multipart field \"pdf\", returns extracted text as JSON",
			"GET /health":        "service health and active backends",
		},
	})
}
