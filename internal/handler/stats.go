package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cmpocmkp/kptube-go/internal/service"
)

type StatsHandler struct {
	svc *service.RunService
}

func NewStatsHandler(svc *service.RunService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch statistics",
			},
		})
	}

	return c.JSON(stats)
}
