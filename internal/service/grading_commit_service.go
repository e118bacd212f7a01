package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/repository"
)

// ErrAttemptNotFound indicates the callback referenced an unknown attempt.
var ErrAttemptNotFound = errors.New("attempt not found")

// GradedSubject is the NATS subject carrying attempt-graded notifications.
const GradedSubject = "examforge.attempts.graded"

// GradingCommitService applies a finished AI grading score to the system of
// record. Committing is an overwrite, so replayed callbacks are idempotent.
type GradingCommitService interface {
	Commit(ctx context.Context, attemptID uint, score float64) (dto.AttemptResponse, error)
}

type gradingCommitService struct {
	attempts repository.AttemptRepository
	redis    *redis.Client
	nats     *nats.Conn
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewGradingCommitService constructs the commit service.
func NewGradingCommitService(attempts repository.AttemptRepository, redisClient *redis.Client, natsConn *nats.Conn, logger zerolog.Logger) GradingCommitService {
	return &gradingCommitService{
		attempts: attempts,
		redis:    redisClient,
		nats:     natsConn,
		logger:   logger.With().Str("component", "grading_commit_service").Logger(),
		tracer:   otel.Tracer("github.com/examforge/examforge-api/internal/service/grading_commit"),
	}
}

func (s *gradingCommitService) Commit(ctx context.Context, attemptID uint, score float64) (dto.AttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.commit", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(attemptID)),
		attribute.Float64("attempt.score", score),
	))
	defer span.End()

	attempt, err := s.attempts.CommitAIScore(ctx, attemptID, score)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "attempt_not_found")
			return dto.AttemptResponse{}, ErrAttemptNotFound
		}
		span.SetStatus(codes.Error, "commit_failed")
		return dto.AttemptResponse{}, err
	}

	s.releaseInflightLock(ctx, attemptID)
	s.notify(attempt.ID, attempt.TestID, attempt.StudentID, score)

	s.logger.Info().
		Uint("attempt_id", attempt.ID).
		Float64("score", score).
		Msg("AI grading score committed")

	return dto.NewAttemptResponse(attempt), nil
}

// releaseInflightLock frees the attempt for future grading dispatches once
// its score has landed.
func (s *gradingCommitService) releaseInflightLock(ctx context.Context, attemptID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, InflightLockKey(attemptID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("attempt_id", attemptID).Msg("failed to release in-flight lock")
	}
}

func (s *gradingCommitService) notify(attemptID, testID, studentID uint, score float64) {
	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(dto.AttemptGradedEvent{
		AttemptID: attemptID,
		TestID:    testID,
		StudentID: studentID,
		Score:     score,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal graded event")
		return
	}

	if err := s.nats.Publish(GradedSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("attempt_id", attemptID).Msg("failed to publish graded event")
	}
}
