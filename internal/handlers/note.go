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

type NoteHandler struct {
	noteService   *services.NoteService
	accessService AccessServiceInterface
}

func NewNoteHandler(noteService *services.NoteService, accessService AccessServiceInterface) *NoteHandler {
	return &NoteHandler{noteService: noteService, accessService: accessService}
}

func (h *NoteHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.CreateNoteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	ctx := context.Background()
	if req.WorkspaceID != nil {
		if !h.accessService.CanAccess(ctx, userID, services.KindWorkspace, *req.WorkspaceID) {
			c.NotFound("workspace not found")
			return
		}
	}
	if req.ProjectID != nil {
		if !h.accessService.CanAccess(ctx, userID, services.KindProject, *req.ProjectID) {
			c.NotFound("project not found")
			return
		}
	}

	n, err := h.noteService.Create(ctx, services.CreateNoteInput{
		SpaceID:         req.SpaceID,
		WorkspaceID:     req.WorkspaceID,
		ProjectID:       req.ProjectID,
		AuthorID:        userID,
		Title:           req.Title,
		Content:         req.Content,
		Tags:            req.Tags,
		VisibilityScope: req.VisibilityScope,
	})
	if err != nil {
		c.InternalServerError("failed to create note")
		return
	}

	_ = c.JSON(201, n)
}

func (h *NoteHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid note id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindNote, noteID) {
		c.NotFound("note not found")
		return
	}

	n, err := h.noteService.GetByID(ctx, noteID)
	if err != nil {
		c.NotFound("note not found")
		return
	}

	_ = c.JSON(200, n)
}

func (h *NoteHandler) ListForWorkspace(c *drift.Context) {
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

	notes, err := h.noteService.ListForWorkspace(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to list notes")
		return
	}

	_ = c.JSON(200, notes)
}

func (h *NoteHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid note id")
		return
	}

	var req dto.UpdateNoteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindNote, noteID) {
		c.NotFound("note not found")
		return
	}

	n, err := h.noteService.Update(ctx, noteID, req.Title, req.Content, req.Tags, req.VisibilityScope)
	if errors.Is(err, services.ErrNoteNotFound) {
		c.NotFound("note not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to update note")
		return
	}

	_ = c.JSON(200, n)
}

func (h *NoteHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid note id")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindNote, noteID) {
		c.NotFound("note not found")
		return
	}

	if err := h.noteService.Delete(ctx, noteID); err != nil {
		c.InternalServerError("failed to delete note")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "note deleted"})
}
