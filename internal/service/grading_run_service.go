package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/repository"
)

// GradingRunService drives one grading job end to end on the grading
// service: evaluate the batch, persist the per-submission results, then
// call the aggregate score back to the primary service.
type GradingRunService interface {
	Run(ctx context.Context, request dto.GradeRequest) dto.GradeResponse
}

type gradingRunService struct {
	evaluator EvaluationService
	attempts  repository.AttemptRepository
	reporter  ResultReporter
	logger    zerolog.Logger
}

// NewGradingRunService constructs the grading job runner.
func NewGradingRunService(evaluator EvaluationService, attempts repository.AttemptRepository, reporter ResultReporter, logger zerolog.Logger) GradingRunService {
	return &gradingRunService{
		evaluator: evaluator,
		attempts:  attempts,
		reporter:  reporter,
		logger:    logger.With().Str("component", "grading_run_service").Logger(),
	}
}

func (s *gradingRunService) Run(ctx context.Context, request dto.GradeRequest) dto.GradeResponse {
	response := s.evaluator.Evaluate(ctx, request)
	if !response.Success {
		return response
	}

	if len(response.Results) > 0 {
		if err := s.attempts.SaveResults(ctx, response.Results); err != nil {
			s.logger.Error().Err(err).Uint("attempt_id", request.AttemptID).Msg("failed to persist grading results")
			response.Success = false
			response.Message = "failed to persist grading results"
			return response
		}
	}

	// An empty or fully failed batch commits nothing. A replayed dispatch
	// lands here once every submission is already scored; reporting zero
	// would overwrite the committed score.
	if response.GradedCount() == 0 {
		s.logger.Info().Uint("attempt_id", request.AttemptID).Msg("no submissions graded, skipping callback")
		return response
	}

	// The aggregate covers every stored AI score of the attempt, not just
	// this batch, so a partial-failure re-dispatch keeps earlier points.
	total, err := s.attempts.SumAIScores(ctx, request.AttemptID)
	if err != nil {
		s.logger.Error().Err(err).Uint("attempt_id", request.AttemptID).Msg("failed to aggregate stored scores")
		response.Success = false
		response.Message = "failed to aggregate stored scores"
		return response
	}

	// The callback is at-most-once by design; a failed delivery leaves the
	// attempt ungraded and is recoverable only by re-dispatching.
	if err := s.reporter.Report(ctx, request.AttemptID, total); err != nil {
		s.logger.Error().Err(err).Uint("attempt_id", request.AttemptID).Msg("grading callback failed")
	}

	return response
}
