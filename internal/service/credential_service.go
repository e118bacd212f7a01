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
	"github.com/examforge/examforge-api/internal/vault"
	"github.com/examforge/examforge-api/pkg/llm"
)

// ErrCredentialNotFound indicates the credential was not located.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialService manages vendor API keys. Keys are sealed on the way in
// and only their masked prefix/suffix ever leave again.
type CredentialService interface {
	Create(ctx context.Context, payload dto.CredentialCreateRequest, ownerID uint) (dto.CredentialResponse, error)
	List(ctx context.Context, ownerID uint) ([]dto.CredentialResponse, error)
	Deactivate(ctx context.Context, id uint) error
}

type credentialService struct {
	repo      repository.CredentialRepository
	vault     *vault.Vault
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCredentialService constructs the credential service.
func NewCredentialService(repo repository.CredentialRepository, keyVault *vault.Vault, validate *validator.Validate, logger zerolog.Logger) CredentialService {
	return &credentialService{
		repo:      repo,
		vault:     keyVault,
		validator: validate,
		logger:    logger.With().Str("component", "credential_service").Logger(),
	}
}

func (s *credentialService) Create(ctx context.Context, payload dto.CredentialCreateRequest, ownerID uint) (dto.CredentialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CredentialResponse{}, err
	}

	if _, err := llm.ParseVendor(payload.Provider); err != nil {
		return dto.CredentialResponse{}, err
	}

	encrypted, err := s.vault.Encrypt(payload.APIKey)
	if err != nil {
		return dto.CredentialResponse{}, err
	}

	prefix, suffix := vault.Mask(payload.APIKey)
	credential := models.Credential{
		Label:        payload.Label,
		Provider:     payload.Provider,
		EncryptedKey: encrypted,
		KeyPrefix:    prefix,
		KeySuffix:    suffix,
		Global:       payload.Global,
		Active:       true,
	}
	if !payload.Global {
		credential.OwnerID = &ownerID
	}

	if err := s.repo.Create(ctx, &credential); err != nil {
		return dto.CredentialResponse{}, err
	}

	s.logger.Info().
		Uint("credential_id", credential.ID).
		Str("provider", credential.Provider).
		Msg("credential stored")

	return dto.NewCredentialResponse(credential), nil
}

func (s *credentialService) List(ctx context.Context, ownerID uint) ([]dto.CredentialResponse, error) {
	credentials, err := s.repo.List(ctx, &ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CredentialResponse, 0, len(credentials))
	for _, credential := range credentials {
		responses = append(responses, dto.NewCredentialResponse(credential))
	}

	return responses, nil
}

// Deactivate disables the credential; assignments referencing it lose their
// credential and AI evaluation is switched off for them.
func (s *credentialService) Deactivate(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCredentialNotFound
		}
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("credential_id", id).Msg("credential deactivated")
	return nil
}
