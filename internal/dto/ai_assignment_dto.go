package dto

import (
	"time"

	"github.com/examforge/examforge-api/internal/models"
)

// AIAssignmentUpsertRequest configures AI grading for a (test, group) pair.
type AIAssignmentUpsertRequest struct {
	TestID              uint  `json:"test_id" validate:"required,gt=0"`
	GroupID             uint  `json:"group_id" validate:"required,gt=0"`
	CredentialID        *uint `json:"credential_id"`
	PromptID            *uint `json:"prompt_id"`
	AIEvaluationEnabled bool  `json:"ai_evaluation_enabled"`
}

// AIAssignmentResponse is the API view of an AI grading configuration.
type AIAssignmentResponse struct {
	ID                  uint      `json:"id"`
	TestID              uint      `json:"test_id"`
	GroupID             uint      `json:"group_id"`
	CredentialID        *uint     `json:"credential_id"`
	PromptID            *uint     `json:"prompt_id"`
	AIEvaluationEnabled bool      `json:"ai_evaluation_enabled"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewAIAssignmentResponse maps an assignment row to its API view.
func NewAIAssignmentResponse(assignment models.AIAssignment) AIAssignmentResponse {
	return AIAssignmentResponse{
		ID:                  assignment.ID,
		TestID:              assignment.TestID,
		GroupID:             assignment.GroupID,
		CredentialID:        assignment.CredentialID,
		PromptID:            assignment.PromptID,
		AIEvaluationEnabled: assignment.AIEvaluationEnabled,
		UpdatedAt:           assignment.UpdatedAt,
	}
}
