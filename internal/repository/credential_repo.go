package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/models"
)

// CredentialRepository defines data operations for vendor API credentials.
type CredentialRepository interface {
	GetByID(ctx context.Context, id uint) (models.Credential, error)
	List(ctx context.Context, ownerID *uint) ([]models.Credential, error)
	Create(ctx context.Context, credential *models.Credential) error
	Deactivate(ctx context.Context, id uint) error
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository instantiates the repository.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByID(ctx context.Context, id uint) (models.Credential, error) {
	var credential models.Credential
	if err := r.db.WithContext(ctx).First(&credential, id).Error; err != nil {
		return models.Credential{}, err
	}

	return credential, nil
}

func (r *credentialRepository) List(ctx context.Context, ownerID *uint) ([]models.Credential, error) {
	query := r.db.WithContext(ctx).Model(&models.Credential{})
	if ownerID != nil {
		query = query.Where("owner_id = ? OR global = ?", *ownerID, true)
	}

	var credentials []models.Credential
	if err := query.Order("created_at DESC").Find(&credentials).Error; err != nil {
		return nil, err
	}

	return credentials, nil
}

func (r *credentialRepository) Create(ctx context.Context, credential *models.Credential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

// Deactivate disables the credential and cascades to every assignment
// referencing it: the reference is cleared and AI evaluation switched off.
func (r *credentialRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Credential{}).Where("id = ?", id).Update("active", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.AIAssignment{}).
			Where("credential_id = ?", id).
			Updates(map[string]interface{}{
				"credential_id":         nil,
				"ai_evaluation_enabled": false,
			}).Error
	})
}
