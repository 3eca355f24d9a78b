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

type TaskHandler struct {
	taskService       *services.TaskService
	recurrenceService *services.RecurrenceService
	accessService     AccessServiceInterface
}

func NewTaskHandler(
	taskService *services.TaskService,
	recurrenceService *services.RecurrenceService,
	accessService AccessServiceInterface,
) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		recurrenceService: recurrenceService,
		accessService:     accessService,
	}
}

func (h *TaskHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindProject, req.ProjectID) {
		c.NotFound("project not found")
		return
	}

	t, err := h.taskService.Create(ctx, services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		NoteID:      req.NoteID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		c.InternalServerError("failed to create task")
		return
	}

	_ = c.JSON(201, t)
}

func (h *TaskHandler) Get(c *drift.Context) {
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

	t, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		c.NotFound("task not found")
		return
	}

	_ = c.JSON(200, t)
}

func (h *TaskHandler) ListForProject(c *drift.Context) {
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

	tasks, err := h.taskService.ListForProject(ctx, projectID)
	if err != nil {
		c.InternalServerError("failed to list tasks")
		return
	}

	_ = c.JSON(200, tasks)
}

func (h *TaskHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindTask, taskID) {
		c.NotFound("task not found")
		return
	}

	t, err := h.taskService.Update(ctx, taskID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if errors.Is(err, services.ErrTaskNotFound) {
		c.NotFound("task not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to update task")
		return
	}

	_ = c.JSON(200, t)
}

func (h *TaskHandler) Delete(c *drift.Context) {
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

	if err := h.taskService.Delete(ctx, taskID); err != nil {
		c.InternalServerError("failed to delete task")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}

// CreateSeries turns an existing task into the template of a recurring
// series.
func (h *TaskHandler) CreateSeries(c *drift.Context) {
	userID := middleware.GetUserID(c)

	var req dto.CreateSeriesRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	if !h.accessService.CanAccess(ctx, userID, services.KindTask, req.TemplateTaskID) {
		c.NotFound("task not found")
		return
	}

	series, err := h.recurrenceService.CreateSeries(ctx, req.TemplateTaskID, services.RecurrenceRule{
		Pattern:        req.Pattern,
		Interval:       req.Interval,
		Weekdays:       req.Weekdays,
		MonthDay:       req.MonthDay,
		MonthOfYear:    req.MonthOfYear,
		EndDate:        req.EndDate,
		MaxOccurrences: req.MaxOccurrences,
	})
	if errors.Is(err, services.ErrInvalidRecurrence) {
		c.BadRequest(err.Error())
		return
	}
	if errors.Is(err, services.ErrTemplateTaskNotFound) {
		c.NotFound("task not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to create series")
		return
	}

	_ = c.JSON(201, series)
}

func (h *TaskHandler) GetSeries(c *drift.Context) {
	userID := middleware.GetUserID(c)

	seriesID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid series id")
		return
	}

	ctx := context.Background()
	series, err := h.recurrenceService.GetSeries(ctx, seriesID)
	if errors.Is(err, services.ErrSeriesNotFound) {
		c.NotFound("series not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to get series")
		return
	}

	if !h.accessService.CanAccess(ctx, userID, services.KindTask, series.TemplateTaskID) {
		c.NotFound("series not found")
		return
	}

	_ = c.JSON(200, series)
}

func (h *TaskHandler) CancelSeries(c *drift.Context) {
	userID := middleware.GetUserID(c)

	seriesID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid series id")
		return
	}

	ctx := context.Background()
	series, err := h.recurrenceService.GetSeries(ctx, seriesID)
	if errors.Is(err, services.ErrSeriesNotFound) {
		c.NotFound("series not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to get series")
		return
	}

	if !h.accessService.CanAccess(ctx, userID, services.KindTask, series.TemplateTaskID) {
		c.NotFound("series not found")
		return
	}

	if err := h.recurrenceService.Cancel(ctx, seriesID); err != nil {
		c.InternalServerError("failed to cancel series")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "series cancelled"})
}
