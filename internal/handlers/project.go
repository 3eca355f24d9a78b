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

type ProjectHandler struct {
	projectService *services.ProjectService
	accessService  AccessServiceInterface
	auditService   *services.AuditService
}

func NewProjectHandler(
	projectService *services.ProjectService,
	accessService AccessServiceInterface,
	auditService *services.AuditService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		accessService:  accessService,
		auditService:   auditService,
	}
}

func (h *ProjectHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	ctx := context.Background()
	if req.WorkspaceID != nil {
		if !h.accessService.CanAccess(ctx, userID, services.KindWorkspace, *req.WorkspaceID) {
			c.NotFound("workspace not found")
			return
		}
	}

	p, err := h.projectService.Create(ctx, req.Name, req.Description, req.Color, req.SpaceID, req.WorkspaceID)
	if errors.Is(err, services.ErrProjectScope) {
		c.BadRequest("project must belong to exactly one of a space or a workspace")
		return
	}
	if err != nil {
		c.InternalServerError("failed to create project")
		return
	}

	_ = h.auditService.Record(ctx, req.WorkspaceID, userID, "project.created", "project", p.ID, nil)

	_ = c.JSON(201, p)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindProject, projectID) {
		c.NotFound("project not found")
		return
	}

	p, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		c.NotFound("project not found")
		return
	}

	_ = c.JSON(200, p)
}

func (h *ProjectHandler) ListForWorkspace(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindWorkspace, workspaceID) {
		c.NotFound("workspace not found")
		return
	}

	projects, err := h.projectService.ListForWorkspace(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to list projects")
		return
	}

	_ = c.JSON(200, projects)
}

func (h *ProjectHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindProject, projectID) {
		c.NotFound("project not found")
		return
	}

	p, err := h.projectService.Update(ctx, projectID, req.Name, req.Description, req.Color)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to update project")
		return
	}

	_ = h.auditService.Record(ctx, p.WorkspaceID, userID, "project.updated", "project", p.ID, nil)

	_ = c.JSON(200, p)
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindProject, projectID) {
		c.NotFound("project not found")
		return
	}

	p, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		c.NotFound("project not found")
		return
	}

	if err := h.projectService.Delete(ctx, projectID); err != nil {
		c.InternalServerError("failed to delete project")
		return
	}

	_ = h.auditService.Record(ctx, p.WorkspaceID, userID, "project.deleted", "project", projectID, nil)

	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}
