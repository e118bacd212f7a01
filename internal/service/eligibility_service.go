package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/examforge/examforge-api/internal/models"
	"github.com/examforge/examforge-api/internal/repository"
)

// Eligibility is the resolved AI grading configuration for one attempt.
type Eligibility struct {
	Credential models.Credential
	PromptID   uint
}

// EligibilityService decides whether a completed attempt qualifies for
// automated grading and, if so, with which credential and prompt.
type EligibilityService interface {
	Resolve(ctx context.Context, attempt models.Attempt) (Eligibility, bool, error)
}

type eligibilityService struct {
	groups      repository.GroupRepository
	assignments repository.AIAssignmentRepository
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEligibilityService constructs the resolver.
func NewEligibilityService(groups repository.GroupRepository, assignments repository.AIAssignmentRepository, logger zerolog.Logger) EligibilityService {
	return &eligibilityService{
		groups:      groups,
		assignments: assignments,
		logger:      logger.With().Str("component", "eligibility_service").Logger(),
		tracer:      otel.Tracer("github.com/examforge/examforge-api/internal/service/eligibility"),
	}
}

// Resolve enumerates the student's groups and returns the first enabled
// assignment carrying an active credential. Absence of eligibility is a
// normal silent outcome, not an error.
func (s *eligibilityService) Resolve(ctx context.Context, attempt models.Attempt) (Eligibility, bool, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.resolve", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(attempt.ID)),
		attribute.Int64("attempt.test_id", int64(attempt.TestID)),
	))
	defer span.End()

	groupIDs, err := s.groups.ListGroupIDsForStudent(ctx, attempt.StudentID)
	if err != nil {
		span.RecordError(err)
		return Eligibility{}, false, err
	}
	if len(groupIDs) == 0 {
		return Eligibility{}, false, nil
	}

	assignments, err := s.assignments.ListEnabledForGroups(ctx, attempt.TestID, groupIDs)
	if err != nil {
		span.RecordError(err)
		return Eligibility{}, false, err
	}

	matches := make([]models.AIAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.Credential != nil && assignment.Credential.Active {
			matches = append(matches, assignment)
		}
	}

	if len(matches) == 0 {
		span.SetAttributes(attribute.Bool("eligibility.hit", false))
		return Eligibility{}, false, nil
	}

	// Membership in several AI-configured groups for the same test is a
	// configuration smell; take the lowest group id and say so.
	if len(matches) > 1 {
		s.logger.Warn().
			Uint("attempt_id", attempt.ID).
			Uint("test_id", attempt.TestID).
			Int("matches", len(matches)).
			Msg("student belongs to multiple AI-graded groups for this test, using first match")
	}

	chosen := matches[0]
	promptID := models.DefaultPromptID
	if chosen.PromptID != nil {
		promptID = *chosen.PromptID
	}

	span.SetAttributes(
		attribute.Bool("eligibility.hit", true),
		attribute.Int64("eligibility.group_id", int64(chosen.GroupID)),
	)

	return Eligibility{Credential: *chosen.Credential, PromptID: promptID}, true, nil
}
