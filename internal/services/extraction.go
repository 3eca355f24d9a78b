package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/ai"
)

const extractionSystemPrompt = "You are an assistant that extracts actionable tasks from text. " +
	"Respond with a JSON array of objects with title, description, priority (low/medium/high/urgent) and due_date fields. " +
	"Use null for unknown due dates. Respond with the JSON array only."

// ExtractedTask is one task suggestion pulled out of free-form content.
type ExtractedTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// ExtractionService runs the quota-gated AI task extraction. Quota is
// reserved before the call and refunded when the call ends inconclusively,
// so transient upstream failures do not count against the user.
type ExtractionService struct {
	quota     *QuotaService
	completer ai.Completer
}

func NewExtractionService(quota *QuotaService, completer ai.Completer) *ExtractionService {
	return &ExtractionService{quota: quota, completer: completer}
}

func (s *ExtractionService) ExtractTasks(ctx context.Context, userID uuid.UUID, content string) ([]ExtractedTask, error) {
	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	raw, err := s.completer.Complete(ctx, extractionSystemPrompt, "Extract tasks from this content:\n\n"+content)
	if err != nil {
		if errors.Is(err, ai.ErrTransient) {
			if refundErr := s.quota.Refund(ctx, userID); refundErr != nil {
				log.Printf("failed to refund quota for user %s: %v", userID, refundErr)
			}
		}
		return nil, err
	}

	tasks, err := parseExtractedTasks(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return tasks, nil
}

// parseExtractedTasks tolerates a model that wraps its answer in a fenced
// code block.
func parseExtractedTasks(raw string) ([]ExtractedTask, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var tasks []ExtractedTask
	if err := json.Unmarshal([]byte(trimmed), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
