package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/lukab/flowtrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type TimerHandler struct {
	timerService  TimerServiceInterface
	accessService AccessServiceInterface
}

func NewTimerHandler(timerService TimerServiceInterface, accessService AccessServiceInterface) *TimerHandler {
	return &TimerHandler{timerService: timerService, accessService: accessService}
}

func (h *TimerHandler) Start(c *drift.Context) {
	userID := middleware.GetUserID(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindTask, taskID) {
		c.NotFound("task not found")
		return
	}

	timer, err := h.timerService.Start(ctx, taskID)
	if errors.Is(err, services.ErrTimerAlreadyRunning) {
		c.BadRequest("timer already running for this task")
		return
	}
	if err != nil {
		c.InternalServerError("failed to start timer")
		return
	}

	_ = c.JSON(201, timer)
}

func (h *TimerHandler) Stop(c *drift.Context) {
	userID := middleware.GetUserID(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindTask, taskID) {
		c.NotFound("task not found")
		return
	}

	entry, err := h.timerService.Stop(ctx, taskID)
	if errors.Is(err, services.ErrNoActiveTimer) {
		c.BadRequest("no active timer for this task")
		return
	}
	if err != nil {
		c.InternalServerError("failed to stop timer")
		return
	}

	_ = c.JSON(200, entry)
}

// Active returns the caller's running timer, or null when none is running.
func (h *TimerHandler) Active(c *drift.Context) {
	userID := middleware.GetUserID(c)

	timer, err := h.timerService.ActiveForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to load active timer")
		return
	}

	_ = c.JSON(200, timer)
}

func (h *TimerHandler) Entries(c *drift.Context) {
	userID := middleware.GetUserID(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindTask, taskID) {
		c.NotFound("task not found")
		return
	}

	entries, err := h.timerService.EntriesForTask(ctx, taskID)
	if err != nil {
		c.InternalServerError("failed to list entries")
		return
	}

	_ = c.JSON(200, entries)
}

func (h *TimerHandler) RecordManualEntry(c *drift.Context) {
	userID := middleware.GetUserID(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.ManualEntryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Duration < 0 {
		c.BadRequest("duration cannot be negative")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindTask, taskID) {
		c.NotFound("task not found")
		return
	}

	entry, err := h.timerService.RecordManualEntry(ctx, taskID, req.StartTime, req.EndTime, req.Duration, req.Description)
	if err != nil {
		c.InternalServerError("failed to record entry")
		return
	}

	_ = c.JSON(201, entry)
}
