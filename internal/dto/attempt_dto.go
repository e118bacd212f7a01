package dto

import (
	"time"

	"github.com/examforge/examforge-api/internal/models"
)

// SubmissionView is the API view of one answer within an attempt.
type SubmissionView struct {
	ID             uint   `json:"id"`
	QuestionID     uint   `json:"question_id"`
	AnswerText     string `json:"answer_text"`
	Score          *int   `json:"score"`
	Feedback       string `json:"feedback"`
	NeedsAIGrading bool   `json:"needs_ai_grading"`
	GradedByAI     bool   `json:"graded_by_ai"`
}

// AttemptResponse is returned when viewing or completing an attempt.
type AttemptResponse struct {
	ID          uint             `json:"id"`
	TestID      uint             `json:"test_id"`
	StudentID   uint             `json:"student_id"`
	Score       *float64         `json:"score"`
	Completed   bool             `json:"completed"`
	EndedAt     *time.Time       `json:"ended_at"`
	Submissions []SubmissionView `json:"submissions"`
}

// NewAttemptResponse maps an attempt and its submissions to the API view.
func NewAttemptResponse(attempt models.Attempt) AttemptResponse {
	submissions := make([]SubmissionView, 0, len(attempt.Submissions))
	for _, submission := range attempt.Submissions {
		submissions = append(submissions, SubmissionView{
			ID:             submission.ID,
			QuestionID:     submission.QuestionID,
			AnswerText:     submission.AnswerText,
			Score:          submission.Score,
			Feedback:       submission.Feedback,
			NeedsAIGrading: submission.NeedsAIGrading,
			GradedByAI:     submission.GradedByAI,
		})
	}

	return AttemptResponse{
		ID:          attempt.ID,
		TestID:      attempt.TestID,
		StudentID:   attempt.StudentID,
		Score:       attempt.Score,
		Completed:   attempt.Completed,
		EndedAt:     attempt.EndedAt,
		Submissions: submissions,
	}
}
