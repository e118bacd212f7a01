package models

import "time"

// AIAssignment configures AI grading for one (test, group) pair.
// Enabling AI evaluation requires a credential; deactivating that credential
// clears the reference and disables the flag again.
type AIAssignment struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	TestID              uint        `gorm:"not null;uniqueIndex:idx_test_group" json:"test_id"`
	GroupID             uint        `gorm:"not null;uniqueIndex:idx_test_group" json:"group_id"`
	CredentialID        *uint       `gorm:"index" json:"credential_id"`
	PromptID            *uint       `json:"prompt_id"`
	AIEvaluationEnabled bool        `gorm:"not null;default:false" json:"ai_evaluation_enabled"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	Credential          *Credential `json:"credential,omitempty"`
}
