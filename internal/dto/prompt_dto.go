package dto

import (
	"time"

	"github.com/examforge/examforge-api/internal/models"
)

// PromptCreateRequest registers a new grading prompt template.
type PromptCreateRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=120"`
	Template string `json:"template" validate:"required,min=20"`
}

// PromptResponse is the API view of a grading prompt.
type PromptResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	Version   int       `json:"version"`
	OwnerID   *uint     `json:"owner_id"`
	Default   bool      `json:"default"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPromptResponse maps a prompt row to its API view.
func NewPromptResponse(prompt models.Prompt) PromptResponse {
	return PromptResponse{
		ID:        prompt.ID,
		Name:      prompt.Name,
		Template:  prompt.Template,
		Version:   prompt.Version,
		OwnerID:   prompt.OwnerID,
		Default:   prompt.IsDefault(),
		UpdatedAt: prompt.UpdatedAt,
	}
}
