package models

import (
	"time"

	"gorm.io/datatypes"
)

// Test is a set of questions assignable to groups.
type Test struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Subject   string     `gorm:"size:120" json:"subject"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Questions []Question `json:"questions,omitempty"`
}

const (
	// QuestionTypeText marks a free-form written answer question.
	QuestionTypeText = "text"
	// QuestionTypeChoice marks a multiple-choice question.
	QuestionTypeChoice = "choice"
)

// Question is a single gradable item within a test.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TestID        uint           `gorm:"not null;index" json:"test_id"`
	Type          string         `gorm:"size:32;not null" json:"type"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text" json:"-"`
	MaxScore      int            `gorm:"not null" json:"max_score"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
