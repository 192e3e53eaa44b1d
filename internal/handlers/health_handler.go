package handlers

import "github.com/gofiber/fiber/v2"

type HealthHandler struct {
	providerName   string
	rasterizerName string
}

func NewHealthHandler(providerName, rasterizerName string) *HealthHandler {
	return &HealthHandler{providerName: providerName, rasterizerName: rasterizerName}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if the API is alive and which backends are active
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"service":    "ocr-processing",
		"provider":   h.providerName,
		"rasterizer": h.rasterizerName,
	})
}
