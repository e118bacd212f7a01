package models

import "time"

// DefaultPromptID is the fixed identifier of the built-in grading prompt.
// The row is seeded at startup and can neither be deleted nor reassigned.
const DefaultPromptID uint = 1

// Prompt is a versioned grading instruction template. The template carries
// the placeholder tokens substituted by the prompt builder.
type Prompt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Template  string    `gorm:"type:text;not null" json:"template"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	OwnerID   *uint     `gorm:"index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDefault reports whether this is the protected built-in prompt.
func (p Prompt) IsDefault() bool {
	return p.ID == DefaultPromptID
}
