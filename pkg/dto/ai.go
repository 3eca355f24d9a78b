package dto

import "github.com/lukab/flowtrack-api/internal/services"

type ExtractTasksRequest struct {
	Content string `json:"content"`
}

type ExtractTasksResponse struct {
	Tasks []services.ExtractedTask `json:"tasks"`
}
