package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/models"
	"github.com/examforge/examforge-api/internal/repository"
)

// ErrCredentialRequired indicates AI evaluation was enabled without a credential.
var ErrCredentialRequired = errors.New("enabling AI evaluation requires a credential")

// ErrCredentialInactive indicates the referenced credential has been deactivated.
var ErrCredentialInactive = errors.New("credential is not active")

// ErrPromptNotFound indicates the referenced prompt does not exist.
var ErrPromptNotFound = errors.New("prompt not found")

// AIAssignmentService manages the per-(test, group) AI grading configuration.
type AIAssignmentService interface {
	Upsert(ctx context.Context, payload dto.AIAssignmentUpsertRequest) (dto.AIAssignmentResponse, error)
	Get(ctx context.Context, testID, groupID uint) (dto.AIAssignmentResponse, error)
}

type aiAssignmentService struct {
	assignments repository.AIAssignmentRepository
	credentials repository.CredentialRepository
	prompts     repository.PromptRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAIAssignmentService constructs the assignment configuration service.
func NewAIAssignmentService(assignments repository.AIAssignmentRepository, credentials repository.CredentialRepository, prompts repository.PromptRepository, validate *validator.Validate, logger zerolog.Logger) AIAssignmentService {
	return &aiAssignmentService{
		assignments: assignments,
		credentials: credentials,
		prompts:     prompts,
		validator:   validate,
		logger:      logger.With().Str("component", "ai_assignment_service").Logger(),
	}
}

// Upsert writes the single configuration row for a (test, group) pair.
// Enabling AI evaluation without an active credential is rejected outright.
func (s *aiAssignmentService) Upsert(ctx context.Context, payload dto.AIAssignmentUpsertRequest) (dto.AIAssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AIAssignmentResponse{}, err
	}

	if payload.AIEvaluationEnabled && payload.CredentialID == nil {
		return dto.AIAssignmentResponse{}, ErrCredentialRequired
	}

	if payload.CredentialID != nil {
		credential, err := s.credentials.GetByID(ctx, *payload.CredentialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AIAssignmentResponse{}, ErrCredentialNotFound
			}
			return dto.AIAssignmentResponse{}, err
		}
		if !credential.Active {
			return dto.AIAssignmentResponse{}, ErrCredentialInactive
		}
	}

	if payload.PromptID != nil {
		if _, err := s.prompts.GetByID(ctx, *payload.PromptID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.AIAssignmentResponse{}, ErrPromptNotFound
			}
			return dto.AIAssignmentResponse{}, err
		}
	}

	assignment := models.AIAssignment{
		TestID:              payload.TestID,
		GroupID:             payload.GroupID,
		CredentialID:        payload.CredentialID,
		PromptID:            payload.PromptID,
		AIEvaluationEnabled: payload.AIEvaluationEnabled,
	}
	if err := s.assignments.Upsert(ctx, &assignment); err != nil {
		return dto.AIAssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("test_id", assignment.TestID).
		Uint("group_id", assignment.GroupID).
		Bool("enabled", assignment.AIEvaluationEnabled).
		Msg("AI grading configuration updated")

	return dto.NewAIAssignmentResponse(assignment), nil
}

func (s *aiAssignmentService) Get(ctx context.Context, testID, groupID uint) (dto.AIAssignmentResponse, error) {
	assignment, err := s.assignments.GetByTestAndGroup(ctx, testID, groupID)
	if err != nil {
		return dto.AIAssignmentResponse{}, err
	}

	return dto.NewAIAssignmentResponse(assignment), nil
}
