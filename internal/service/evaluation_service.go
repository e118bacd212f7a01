package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/models"
	"github.com/examforge/examforge-api/internal/repository"
	"github.com/examforge/examforge-api/pkg/llm"
)

// ModelSender is the slice of the llm client the evaluator depends on.
type ModelSender interface {
	Send(ctx context.Context, vendor llm.Vendor, apiKey string, messages []llm.Message, opts *llm.Options) (string, error)
}

// EvaluationService grades the pending submissions of one attempt. Failures
// degrade per submission; one unreachable vendor call or unparseable reply
// never aborts the rest of the batch.
type EvaluationService interface {
	Evaluate(ctx context.Context, request dto.GradeRequest) dto.GradeResponse
}

type evaluationService struct {
	attempts  repository.AttemptRepository
	prompts   repository.PromptRepository
	sender    ModelSender
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewEvaluationService constructs the submission evaluator.
func NewEvaluationService(attempts repository.AttemptRepository, prompts repository.PromptRepository, sender ModelSender, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		attempts:  attempts,
		prompts:   prompts,
		sender:    sender,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		tracer:    otel.Tracer("github.com/examforge/examforge-api/internal/service/evaluation"),
	}
}

// Evaluate runs the grading batch for one attempt. It mutates no state; the
// caller persists the per-submission results and reports the aggregate after
// the whole batch has been attempted.
func (s *evaluationService) Evaluate(ctx context.Context, request dto.GradeRequest) dto.GradeResponse {
	ctx, span := s.tracer.Start(ctx, "grading.evaluate", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(request.AttemptID)),
		attribute.String("llm.vendor", request.AIServiceName),
	))
	defer span.End()

	vendor, err := llm.ParseVendor(request.AIServiceName)
	if err != nil {
		return s.failure(span, request.AttemptID, err)
	}

	template, err := s.loadTemplate(ctx, request.PromptID)
	if err != nil {
		return s.failure(span, request.AttemptID, err)
	}

	submissions, err := s.attempts.ListPendingSubmissions(ctx, request.AttemptID)
	if err != nil {
		return s.failure(span, request.AttemptID, fmt.Errorf("load pending submissions: %w", err))
	}
	if len(submissions) == 0 {
		return dto.GradeResponse{
			AttemptID: request.AttemptID,
			Success:   true,
			Message:   "no submissions awaiting AI grading",
		}
	}

	results := make([]dto.SubmissionResult, 0, len(submissions))
	graded := 0
	for _, submission := range submissions {
		result := s.gradeOne(ctx, vendor, request.APIKey, template, submission)
		if result.Graded {
			graded++
		}
		results = append(results, result)
	}

	span.SetAttributes(
		attribute.Int("grading.submissions", len(submissions)),
		attribute.Int("grading.graded", graded),
	)

	return dto.GradeResponse{
		AttemptID: request.AttemptID,
		Success:   true,
		Message:   fmt.Sprintf("graded %d of %d submissions", graded, len(results)),
		Results:   results,
	}
}

func (s *evaluationService) gradeOne(ctx context.Context, vendor llm.Vendor, apiKey, template string, submission models.Submission) dto.SubmissionResult {
	prompt := BuildPrompt(template, PromptInput{
		Question:      submission.Question.Text,
		CorrectAnswer: submission.Question.CorrectAnswer,
		StudentAnswer: studentAnswer(submission),
		MaxScore:      submission.Question.MaxScore,
	})

	reply, err := s.sender.Send(ctx, vendor, apiKey, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, nil)
	if err != nil {
		s.logger.Warn().Err(err).
			Uint("submission_id", submission.ID).
			Str("vendor", string(vendor)).
			Msg("vendor call failed for submission")
		// Vendor errors can carry request details; students only ever see a
		// fixed message.
		return dto.SubmissionResult{
			SubmissionID: submission.ID,
			Feedback:     "AI grading unavailable, this answer awaits manual review",
			Graded:       false,
		}
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(reply))
	score, found := ExtractScore(reply, submission.Question.MaxScore)
	if !found {
		// Keep the raw reply so a human grader can see what the model said.
		return dto.SubmissionResult{
			SubmissionID: submission.ID,
			Feedback:     feedback,
			Graded:       false,
		}
	}

	return dto.SubmissionResult{
		SubmissionID: submission.ID,
		Score:        score,
		Feedback:     feedback,
		Graded:       true,
	}
}

func (s *evaluationService) loadTemplate(ctx context.Context, promptID *uint) (string, error) {
	id := models.DefaultPromptID
	if promptID != nil {
		id = *promptID
	}

	prompt, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		if id != models.DefaultPromptID {
			// A deleted custom prompt degrades to the default instead of
			// stranding the attempt.
			s.logger.Warn().Uint("prompt_id", id).Msg("configured prompt missing, falling back to default")
			prompt, err = s.prompts.GetByID(ctx, models.DefaultPromptID)
		}
		if err != nil {
			return "", fmt.Errorf("load grading prompt: %w", err)
		}
	}

	return prompt.Template, nil
}

func (s *evaluationService) failure(span trace.Span, attemptID uint, err error) dto.GradeResponse {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("grading batch failed")
	return dto.GradeResponse{
		AttemptID: attemptID,
		Success:   false,
		Message:   err.Error(),
	}
}

func studentAnswer(submission models.Submission) string {
	if strings.TrimSpace(submission.AnswerText) != "" {
		return submission.AnswerText
	}
	if len(submission.SelectedOptions) > 0 {
		return string(submission.SelectedOptions)
	}
	return "(no answer given)"
}
