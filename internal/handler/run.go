package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cmpocmkp/kptube-go/internal/middleware"
	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/service"
)

type RunHandler struct {
	svc    *service.RunService
	worker *service.PipelineWorker
}

func NewRunHandler(svc *service.RunService, worker *service.PipelineWorker) *RunHandler {
	return &RunHandler{svc: svc, worker: worker}
}

// List handles GET /api/runs
func (h *RunHandler) List(c fiber.Ctx) error {
	page, limit, errMsg := middleware.ParsePagination(c.Query("page"), c.Query("limit"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	q := model.RunListQuery{Page: page, Limit: limit}

	if status := c.Query("status"); status != "" {
		switch model.RunStatus(status) {
		case model.RunRunning, model.RunSuccess, model.RunFailed:
			q.Status = model.RunStatus(status)
		default:
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "status must be one of running, success, failed")
		}
	}

	start, errMsg := middleware.ParseDate(c.Query("startDate"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	q.StartDate = start

	end, errMsg := middleware.ParseDate(c.Query("endDate"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	q.EndDate = end

	resp, err := h.svc.List(c.Context(), q)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list runs")
	}
	return c.JSON(resp)
}

// GetByID handles GET /api/runs/:id
func (h *RunHandler) GetByID(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateNumericID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	run, err := h.svc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Run not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch run")
	}

	return c.JSON(run)
}

// Trigger handles POST /api/runs
// Starts a pipeline run outside the schedule. The run executes in the
// background; the response only acknowledges that it was started.
func (h *RunHandler) Trigger(c fiber.Ctx) error {
	// The run outlives the request, so it gets a background context
	// rather than the request's.
	if err := h.worker.TriggerNow(context.Background()); err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			return middleware.ErrorResponse(c, fiber.StatusConflict, "RUN_IN_PROGRESS", "A pipeline run is already in progress")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start run")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Pipeline run started",
	})
}
