package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/lukab/flowtrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	directoryService *services.DirectoryService
	accessService    AccessServiceInterface
	auditService     *services.AuditService
	flagService      *services.FlagService
}

func NewWorkspaceHandler(
	workspaceService *services.WorkspaceService,
	directoryService *services.DirectoryService,
	accessService AccessServiceInterface,
	auditService *services.AuditService,
	flagService *services.FlagService,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		directoryService: directoryService,
		accessService:    accessService,
		auditService:     auditService,
		flagService:      flagService,
	}
}

func (h *WorkspaceHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.CreateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	ws, err := h.workspaceService.Create(context.Background(), userID, req.Name)
	if err != nil {
		c.InternalServerError("failed to create workspace")
		return
	}

	_ = c.JSON(201, ws)
}

func (h *WorkspaceHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaces, err := h.workspaceService.ListForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list workspaces")
		return
	}

	_ = c.JSON(200, workspaces)
}

// Get answers 404 for both missing and inaccessible workspaces, so an outside
// caller cannot distinguish the two.
func (h *WorkspaceHandler) Get(c *drift.Context) {
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

	ws, err := h.workspaceService.GetByID(ctx, workspaceID)
	if err != nil {
		c.NotFound("workspace not found")
		return
	}

	_ = c.JSON(200, ws)
}

func (h *WorkspaceHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	var req dto.UpdateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.requireAdmin(c, ctx, workspaceID, userID) {
		return
	}

	ws, err := h.workspaceService.Update(ctx, workspaceID, req.Name, req.ManagerNoteAccess)
	if err != nil {
		c.InternalServerError("failed to update workspace")
		return
	}

	_ = c.JSON(200, ws)
}

func (h *WorkspaceHandler) Members(c *drift.Context) {
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

	members, err := h.workspaceService.Members(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to list members")
		return
	}

	_ = c.JSON(200, members)
}

func (h *WorkspaceHandler) AddMember(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	var req dto.AddMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.requireAdmin(c, ctx, workspaceID, userID) {
		return
	}

	m, err := h.workspaceService.AddMember(ctx, workspaceID, req.UserID, req.Role)
	if errors.Is(err, services.ErrAlreadyMember) {
		c.BadRequest("user is already a member")
		return
	}
	if err != nil {
		c.InternalServerError("failed to add member")
		return
	}

	_ = h.auditService.Record(ctx, &workspaceID, userID, "member.added", "user", req.UserID, nil)

	_ = c.JSON(201, m)
}

func (h *WorkspaceHandler) RemoveMember(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	ctx := context.Background()
	if !h.requireAdmin(c, ctx, workspaceID, userID) {
		return
	}

	err = h.workspaceService.RemoveMember(ctx, workspaceID, memberID)
	if errors.Is(err, services.ErrMembershipMissing) {
		c.NotFound("membership not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to remove member")
		return
	}

	_ = h.auditService.Record(ctx, &workspaceID, userID, "member.removed", "user", memberID, nil)

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *WorkspaceHandler) UpdateMemberRole(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.requireAdmin(c, ctx, workspaceID, userID) {
		return
	}

	err = h.workspaceService.UpdateMemberRole(ctx, workspaceID, memberID, req.Role)
	if errors.Is(err, services.ErrMembershipMissing) {
		c.NotFound("membership not found")
		return
	}
	if err != nil {
		c.BadRequest("failed to update role")
		return
	}

	_ = h.auditService.Record(ctx, &workspaceID, userID, "member.role_changed", "user", memberID, nil)

	_ = c.JSON(200, map[string]string{"role": req.Role})
}

func (h *WorkspaceHandler) Flags(c *drift.Context) {
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

	flags, err := h.flagService.ListForScope(ctx, "workspace", workspaceID)
	if err != nil {
		c.InternalServerError("failed to list flags")
		return
	}

	_ = c.JSON(200, flags)
}

func (h *WorkspaceHandler) SetFlag(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	var req dto.SetFlagRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Key == "" {
		c.BadRequest("key is required")
		return
	}

	ctx := context.Background()
	if !h.requireAdmin(c, ctx, workspaceID, userID) {
		return
	}

	flag, err := h.flagService.Set(ctx, "workspace", workspaceID, req.Key, req.Value)
	if err != nil {
		c.InternalServerError("failed to set flag")
		return
	}

	_ = c.JSON(200, flag)
}

func (h *WorkspaceHandler) AuditLog(c *drift.Context) {
	userID := middleware.GetUserID(c)

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	ctx := context.Background()
	if !h.requireAdmin(c, ctx, workspaceID, userID) {
		return
	}

	entries, err := h.auditService.ListForWorkspace(ctx, workspaceID, 50)
	if err != nil {
		c.InternalServerError("failed to list audit log")
		return
	}

	_ = c.JSON(200, entries)
}

// requireAdmin hides inaccessible workspaces behind 404 and non-admin
// membership behind 403.
func (h *WorkspaceHandler) requireAdmin(c *drift.Context, ctx context.Context, workspaceID, userID uuid.UUID) bool {
	role, err := h.directoryService.RoleInWorkspace(ctx, workspaceID, userID)
	if err != nil || role == "" {
		c.NotFound("workspace not found")
		return false
	}
	if role != models.RoleAdmin {
		c.Forbidden("admin role required")
		return false
	}
	return true
}
