package dto

import (
	"time"

	"github.com/examforge/examforge-api/internal/models"
)

// CredentialCreateRequest registers a new vendor API key.
type CredentialCreateRequest struct {
	Label    string `json:"label" validate:"required,min=3,max=120"`
	Provider string `json:"provider" validate:"required,oneof=openai anthropic gemini deepseek"`
	APIKey   string `json:"api_key" validate:"required,min=12"`
	Global   bool   `json:"global"`
}

// CredentialResponse is the masked view of a stored credential. The secret
// itself is never part of any response.
type CredentialResponse struct {
	ID        uint      `json:"id"`
	Label     string    `json:"label"`
	Provider  string    `json:"provider"`
	KeyPrefix string    `json:"key_prefix"`
	KeySuffix string    `json:"key_suffix"`
	OwnerID   *uint     `json:"owner_id"`
	Global    bool      `json:"global"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCredentialResponse maps a credential row to its masked view.
func NewCredentialResponse(credential models.Credential) CredentialResponse {
	return CredentialResponse{
		ID:        credential.ID,
		Label:     credential.Label,
		Provider:  credential.Provider,
		KeyPrefix: credential.KeyPrefix,
		KeySuffix: credential.KeySuffix,
		OwnerID:   credential.OwnerID,
		Global:    credential.Global,
		Active:    credential.Active,
		CreatedAt: credential.CreatedAt,
	}
}
