package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attempt is one student's sitting of a test.
type Attempt struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TestID      uint         `gorm:"not null;index" json:"test_id"`
	StudentID   uint         `gorm:"not null;index" json:"student_id"`
	Score       *float64     `json:"score"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	StartedAt   time.Time    `json:"started_at"`
	EndedAt     *time.Time   `json:"ended_at"`
	Version     int          `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Test        Test         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test"`
	Student     Student      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Submissions []Submission `json:"submissions,omitempty"`
}

// IsGraded reports whether a final score has been attached to the attempt.
func (a Attempt) IsGraded() bool {
	return a.Score != nil
}

// Submission is one answer within an attempt, tied to one question.
type Submission struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AttemptID       uint           `gorm:"not null;index" json:"attempt_id"`
	QuestionID      uint           `gorm:"not null" json:"question_id"`
	AnswerText      string         `gorm:"type:text" json:"answer_text"`
	SelectedOptions datatypes.JSON `json:"selected_options,omitempty"`
	Score           *int           `json:"score"`
	Feedback        string         `gorm:"type:text" json:"feedback"`
	NeedsAIGrading  bool           `gorm:"not null;default:false" json:"needs_ai_grading"`
	GradedByAI      bool           `gorm:"not null;default:false" json:"graded_by_ai"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Question        Question       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
}
