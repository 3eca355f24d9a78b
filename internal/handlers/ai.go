package handlers

import (
	"context"
	"errors"

	"github.com/lukab/flowtrack-api/internal/ai"
	"github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/lukab/flowtrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AIHandler struct {
	extractionService ExtractionServiceInterface
}

func NewAIHandler(extractionService ExtractionServiceInterface) *AIHandler {
	return &AIHandler{extractionService: extractionService}
}

func (h *AIHandler) ExtractTasks(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.ExtractTasksRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Content == "" {
		c.BadRequest("content is required")
		return
	}

	tasks, err := h.extractionService.ExtractTasks(context.Background(), userID, req.Content)
	if errors.Is(err, services.ErrQuotaExceeded) {
		_ = c.JSON(429, map[string]string{"error": "daily extraction limit reached"})
		return
	}
	if errors.Is(err, ai.ErrTransient) {
		c.BadGateway("extraction temporarily unavailable")
		return
	}
	if err != nil {
		c.InternalServerError("failed to extract tasks")
		return
	}

	_ = c.JSON(200, dto.ExtractTasksResponse{Tasks: tasks})
}
