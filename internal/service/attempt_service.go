package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/repository"
)

// AttemptService handles the attempt lifecycle on the primary API.
type AttemptService interface {
	Get(ctx context.Context, id uint) (dto.AttemptResponse, error)
	Complete(ctx context.Context, id uint) (dto.AttemptResponse, error)
}

type attemptService struct {
	attempts   repository.AttemptRepository
	dispatcher GradingDispatcher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAttemptService constructs the attempt service.
func NewAttemptService(attempts repository.AttemptRepository, dispatcher GradingDispatcher, logger zerolog.Logger) AttemptService {
	return &attemptService{
		attempts:   attempts,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "attempt_service").Logger(),
		now:        time.Now,
	}
}

func (s *attemptService) Get(ctx context.Context, id uint) (dto.AttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrAttemptNotFound
		}
		return dto.AttemptResponse{}, err
	}

	return dto.NewAttemptResponse(attempt), nil
}

// Complete marks the attempt finished and hands it to the grading
// dispatcher. The dispatch is fire-and-forget: the response returns before
// any grading network call has happened.
func (s *attemptService) Complete(ctx context.Context, id uint) (dto.AttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrAttemptNotFound
		}
		return dto.AttemptResponse{}, err
	}

	if !attempt.Completed {
		endedAt := s.now()
		if err := s.attempts.MarkCompleted(ctx, attempt.ID, endedAt); err != nil {
			return dto.AttemptResponse{}, err
		}
		attempt.Completed = true
		attempt.EndedAt = &endedAt
	}

	s.dispatcher.Dispatch(attempt.ID)

	return dto.NewAttemptResponse(attempt), nil
}
