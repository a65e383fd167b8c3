package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cmpocmkp/kptube-go/internal/middleware"
	"github.com/cmpocmkp/kptube-go/internal/service"
)

type VideoHandler struct {
	svc *service.VideoService
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// ListByChannel handles GET /api/youtubers/:channelId/videos
func (h *VideoHandler) ListByChannel(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	videos, err := h.svc.ListByChannel(c.Context(), channelID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list videos")
	}

	return c.JSON(videos)
}

// GetByID handles GET /api/videos/:id
func (h *VideoHandler) GetByID(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateNumericID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	video, err := h.svc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch video")
	}

	return c.JSON(video)
}

// Reanalyze handles PATCH /api/videos/:id/reanalyze
// Resets the video so the next pipeline run reprocesses it from scratch.
func (h *VideoHandler) Reanalyze(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateNumericID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	video, err := h.svc.Reanalyze(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to queue reanalysis")
	}

	return c.JSON(fiber.Map{
		"message": "Video queued for reanalysis",
		"video":   video,
	})
}
