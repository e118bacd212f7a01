package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/models"
	"github.com/examforge/examforge-api/pkg/llm"
)

type stubAttemptRepo struct {
	attempt     models.Attempt
	attemptErr  error
	pending     []models.Submission
	pendingErr  error
	saved       []dto.SubmissionResult
	saveErr     error
	priorScore  int
	sumErr      error
	completed   []uint
	committed   *float64
	commitErr   error
	commitCalls int
}

func (s *stubAttemptRepo) GetByID(ctx context.Context, id uint) (models.Attempt, error) {
	if s.attemptErr != nil {
		return models.Attempt{}, s.attemptErr
	}
	if s.attempt.ID == 0 {
		return models.Attempt{}, gorm.ErrRecordNotFound
	}
	return s.attempt, nil
}

func (s *stubAttemptRepo) ListPendingSubmissions(ctx context.Context, attemptID uint) ([]models.Submission, error) {
	return s.pending, s.pendingErr
}

func (s *stubAttemptRepo) MarkCompleted(ctx context.Context, id uint, endedAt time.Time) error {
	s.completed = append(s.completed, id)
	return nil
}

func (s *stubAttemptRepo) SaveResults(ctx context.Context, results []dto.SubmissionResult) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, results...)
	return nil
}

func (s *stubAttemptRepo) SumAIScores(ctx context.Context, attemptID uint) (int, error) {
	if s.sumErr != nil {
		return 0, s.sumErr
	}
	total := s.priorScore
	for _, result := range s.saved {
		if result.Graded {
			total += result.Score
		}
	}
	return total, nil
}

func (s *stubAttemptRepo) CommitAIScore(ctx context.Context, attemptID uint, score float64) (models.Attempt, error) {
	s.commitCalls++
	if s.commitErr != nil {
		return models.Attempt{}, s.commitErr
	}
	s.committed = &score
	attempt := s.attempt
	attempt.ID = attemptID
	attempt.Score = &score
	return attempt, nil
}

type stubPromptRepo struct {
	prompts map[uint]models.Prompt
}

func newStubPromptRepo() *stubPromptRepo {
	return &stubPromptRepo{prompts: map[uint]models.Prompt{
		models.DefaultPromptID: {ID: models.DefaultPromptID, Name: "default", Template: testTemplate},
	}}
}

func (s *stubPromptRepo) GetByID(ctx context.Context, id uint) (models.Prompt, error) {
	prompt, ok := s.prompts[id]
	if !ok {
		return models.Prompt{}, gorm.ErrRecordNotFound
	}
	return prompt, nil
}

func (s *stubPromptRepo) List(ctx context.Context) ([]models.Prompt, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPromptRepo) Create(ctx context.Context, prompt *models.Prompt) error {
	return errors.New("not implemented")
}

func (s *stubPromptRepo) Delete(ctx context.Context, id uint) error {
	return errors.New("not implemented")
}

func (s *stubPromptRepo) EnsureDefault(ctx context.Context) error {
	return nil
}

// stubSender replies per submission by matching the prompt's question text.
type stubSender struct {
	replies map[string]string
	errors  map[string]error
	calls   int
}

func (s *stubSender) Send(ctx context.Context, vendor llm.Vendor, apiKey string, messages []llm.Message, opts *llm.Options) (string, error) {
	s.calls++
	prompt := messages[len(messages)-1].Content
	for marker, err := range s.errors {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, reply := range s.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", fmt.Errorf("no canned reply for prompt %q", prompt)
}

func pendingSubmission(id uint, question string, maxScore int, answer string) models.Submission {
	return models.Submission{
		ID:             id,
		AttemptID:      1,
		QuestionID:     id,
		AnswerText:     answer,
		NeedsAIGrading: true,
		Question: models.Question{
			ID:       id,
			Type:     models.QuestionTypeText,
			Text:     question,
			MaxScore: maxScore,
		},
	}
}

func TestEvaluateGradesBatch(t *testing.T) {
	attempts := &stubAttemptRepo{pending: []models.Submission{
		pendingSubmission(11, "What is a goroutine?", 10, "A thread the runtime schedules."),
		pendingSubmission(12, "Explain channels.", 5, "They pass values between goroutines."),
	}}
	sender := &stubSender{replies: map[string]string{
		"What is a goroutine?": "Score: 8/10. Good reasoning.",
		"Explain channels.":    "Score: 5/5.",
	}}

	svc := NewEvaluationService(attempts, newStubPromptRepo(), sender, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{
		AttemptID:     1,
		APIKey:        "sk-test",
		AIServiceName: "openai",
	})

	require.True(t, response.Success)
	require.Len(t, response.Results, 2)
	require.Equal(t, 2, sender.calls)

	require.True(t, response.Results[0].Graded)
	require.Equal(t, 8, response.Results[0].Score)
	require.True(t, response.Results[1].Graded)
	require.Equal(t, 5, response.Results[1].Score)
	require.Equal(t, 13, response.TotalScore())
}

func TestEvaluatePartialFailure(t *testing.T) {
	attempts := &stubAttemptRepo{pending: []models.Submission{
		pendingSubmission(11, "Question one", 10, "answer"),
		pendingSubmission(12, "Question two", 10, "answer"),
		pendingSubmission(13, "Question three", 10, "answer"),
	}}
	sender := &stubSender{
		replies: map[string]string{
			"Question one":   "Score: 6/10",
			"Question three": "Score: 9/10",
		},
		errors: map[string]error{
			"Question two": errors.New(`Post "http://vendor.example/generate?key=sk-leaky-secret": connection refused`),
		},
	}

	svc := NewEvaluationService(attempts, newStubPromptRepo(), sender, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{
		AttemptID:     1,
		APIKey:        "sk-test",
		AIServiceName: "anthropic",
	})

	require.True(t, response.Success)
	require.Len(t, response.Results, 3)

	graded := 0
	for _, result := range response.Results {
		if result.Graded {
			graded++
			continue
		}
		require.Equal(t, uint(12), result.SubmissionID)
		require.Contains(t, result.Feedback, "AI grading unavailable")
		// Raw vendor errors stay in the logs; nothing from them reaches
		// student-visible feedback.
		require.NotContains(t, result.Feedback, "sk-leaky-secret")
		require.NotContains(t, result.Feedback, "connection refused")
	}
	require.Equal(t, 2, graded)
	require.Equal(t, 15, response.TotalScore())
}

func TestEvaluateClampsScores(t *testing.T) {
	attempts := &stubAttemptRepo{pending: []models.Submission{
		pendingSubmission(11, "Overshoot question", 10, "answer"),
	}}
	sender := &stubSender{replies: map[string]string{
		"Overshoot question": "Score: 14/10. Exceptional.",
	}}

	svc := NewEvaluationService(attempts, newStubPromptRepo(), sender, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{AttemptID: 1, APIKey: "k", AIServiceName: "gemini"})

	require.True(t, response.Success)
	require.Equal(t, 10, response.Results[0].Score)
}

func TestEvaluateUnparseableReply(t *testing.T) {
	attempts := &stubAttemptRepo{pending: []models.Submission{
		pendingSubmission(11, "Vague question", 10, "answer"),
	}}
	sender := &stubSender{replies: map[string]string{
		"Vague question": "The answer shows partial understanding.",
	}}

	svc := NewEvaluationService(attempts, newStubPromptRepo(), sender, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{AttemptID: 1, APIKey: "k", AIServiceName: "openai"})

	require.True(t, response.Success)
	require.False(t, response.Results[0].Graded)
	require.Equal(t, "The answer shows partial understanding.", response.Results[0].Feedback)
}

func TestEvaluateSanitizesFeedback(t *testing.T) {
	attempts := &stubAttemptRepo{pending: []models.Submission{
		pendingSubmission(11, "Markup question", 10, "answer"),
	}}
	sender := &stubSender{replies: map[string]string{
		"Markup question": `Score: 7/10 <script>alert("x")</script> solid work`,
	}}

	svc := NewEvaluationService(attempts, newStubPromptRepo(), sender, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{AttemptID: 1, APIKey: "k", AIServiceName: "openai"})

	require.True(t, response.Results[0].Graded)
	require.NotContains(t, response.Results[0].Feedback, "<script>")
	require.Contains(t, response.Results[0].Feedback, "solid work")
}

func TestEvaluateMissingCustomPromptFallsBack(t *testing.T) {
	attempts := &stubAttemptRepo{pending: []models.Submission{
		pendingSubmission(11, "Fallback question", 10, "answer"),
	}}
	sender := &stubSender{replies: map[string]string{
		"Fallback question": "Score: 4/10",
	}}

	missing := uint(42)
	svc := NewEvaluationService(attempts, newStubPromptRepo(), sender, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{
		AttemptID:     1,
		APIKey:        "k",
		AIServiceName: "openai",
		PromptID:      &missing,
	})

	require.True(t, response.Success)
	require.True(t, response.Results[0].Graded)
	require.Equal(t, 4, response.Results[0].Score)
}

func TestEvaluateUnknownVendor(t *testing.T) {
	svc := NewEvaluationService(&stubAttemptRepo{}, newStubPromptRepo(), &stubSender{}, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{AttemptID: 1, APIKey: "k", AIServiceName: "mystery"})

	require.False(t, response.Success)
	require.Contains(t, response.Message, "mystery")
}

func TestEvaluateNoPendingSubmissions(t *testing.T) {
	svc := NewEvaluationService(&stubAttemptRepo{}, newStubPromptRepo(), &stubSender{}, zerolog.Nop())
	response := svc.Evaluate(context.Background(), dto.GradeRequest{AttemptID: 1, APIKey: "k", AIServiceName: "openai"})

	require.True(t, response.Success)
	require.Empty(t, response.Results)
}
