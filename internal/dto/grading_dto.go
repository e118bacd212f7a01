package dto

// GradeRequest is the wire payload handed from the primary service to the
// grading service. The apiKey field carries the decrypted credential for the
// lifetime of the job only and must never be logged.
type GradeRequest struct {
	AttemptID     uint   `json:"attemptId" validate:"required,gt=0"`
	APIKey        string `json:"apiKey" validate:"required"`
	AIServiceName string `json:"aiServiceName" validate:"required"`
	PromptID      *uint  `json:"promptId"`
}

// SubmissionResult is the per-submission outcome of one grading batch.
type SubmissionResult struct {
	SubmissionID uint   `json:"submissionId"`
	Score        int    `json:"score"`
	Feedback     string `json:"feedback"`
	Graded       bool   `json:"graded"`
}

// GradeResponse aggregates the outcome of grading one attempt.
type GradeResponse struct {
	AttemptID uint               `json:"attemptId"`
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Results   []SubmissionResult `json:"results"`
}

// TotalScore sums the scores of successfully graded submissions. Submissions
// the model could not grade contribute zero and stay open for manual review.
func (r GradeResponse) TotalScore() int {
	total := 0
	for _, result := range r.Results {
		if result.Graded {
			total += result.Score
		}
	}
	return total
}

// GradedCount reports how many submissions of the batch received a score.
func (r GradeResponse) GradedCount() int {
	count := 0
	for _, result := range r.Results {
		if result.Graded {
			count++
		}
	}
	return count
}

// AttemptGradedEvent is published on NATS once a callback commits a score.
type AttemptGradedEvent struct {
	AttemptID uint    `json:"attempt_id"`
	TestID    uint    `json:"test_id"`
	StudentID uint    `json:"student_id"`
	Score     float64 `json:"score"`
}
