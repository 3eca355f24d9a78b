package handlers

import (
	"context"
	"errors"

	"github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/lukab/flowtrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService  UserServiceInterface
	quotaService *services.QuotaService
}

func NewUserHandler(userService UserServiceInterface, quotaService *services.QuotaService) *UserHandler {
	return &UserHandler{userService: userService, quotaService: quotaService}
}

func (h *UserHandler) Me(c *drift.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	_ = c.JSON(200, user)
}

func (h *UserHandler) UpdateProfile(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	user, err := h.userService.UpdateProfile(context.Background(), userID, req.Name, req.AvatarURL)
	if err != nil {
		c.InternalServerError("failed to update profile")
		return
	}

	_ = c.JSON(200, user)
}

func (h *UserHandler) UpdatePlan(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.UpdatePlanRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	err := h.userService.UpdatePlan(context.Background(), userID, req.Plan)
	if errors.Is(err, services.ErrInvalidPlan) {
		c.BadRequest("unknown plan: " + req.Plan)
		return
	}
	if err != nil {
		c.InternalServerError("failed to update plan")
		return
	}

	_ = c.JSON(200, map[string]string{"plan": req.Plan})
}

func (h *UserHandler) Quota(c *drift.Context) {
	userID := middleware.GetUserID(c)

	remaining, err := h.quotaService.Remaining(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to load quota")
		return
	}

	_ = c.JSON(200, dto.QuotaResponse{Remaining: remaining})
}
