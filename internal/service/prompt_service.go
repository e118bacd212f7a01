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

// PromptService manages grading prompt templates.
type PromptService interface {
	Create(ctx context.Context, payload dto.PromptCreateRequest, ownerID uint) (dto.PromptResponse, error)
	List(ctx context.Context) ([]dto.PromptResponse, error)
	Delete(ctx context.Context, id uint) error
}

type promptService struct {
	repo      repository.PromptRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPromptService constructs the prompt service.
func NewPromptService(repo repository.PromptRepository, validate *validator.Validate, logger zerolog.Logger) PromptService {
	return &promptService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "prompt_service").Logger(),
	}
}

func (s *promptService) Create(ctx context.Context, payload dto.PromptCreateRequest, ownerID uint) (dto.PromptResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PromptResponse{}, err
	}

	if err := ValidatePromptTemplate(payload.Template); err != nil {
		return dto.PromptResponse{}, err
	}

	prompt := models.Prompt{
		Name:     payload.Name,
		Template: payload.Template,
		Version:  1,
		OwnerID:  &ownerID,
	}
	if err := s.repo.Create(ctx, &prompt); err != nil {
		return dto.PromptResponse{}, err
	}

	return dto.NewPromptResponse(prompt), nil
}

func (s *promptService) List(ctx context.Context) ([]dto.PromptResponse, error) {
	prompts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PromptResponse, 0, len(prompts))
	for _, prompt := range prompts {
		responses = append(responses, dto.NewPromptResponse(prompt))
	}

	return responses, nil
}

func (s *promptService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromptNotFound
		}
		return err
	}

	return nil
}
