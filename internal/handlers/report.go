package handlers

import (
	"context"

	"github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)

	reports, err := h.reportService.ReportsForUser(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to list reports")
		return
	}

	_ = c.JSON(200, reports)
}
