package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/models"
)

// AIAssignmentRepository defines data operations for AI grading configurations.
type AIAssignmentRepository interface {
	GetByTestAndGroup(ctx context.Context, testID, groupID uint) (models.AIAssignment, error)
	ListEnabledForGroups(ctx context.Context, testID uint, groupIDs []uint) ([]models.AIAssignment, error)
	Upsert(ctx context.Context, assignment *models.AIAssignment) error
}

type aiAssignmentRepository struct {
	db *gorm.DB
}

// NewAIAssignmentRepository instantiates the repository.
func NewAIAssignmentRepository(db *gorm.DB) AIAssignmentRepository {
	return &aiAssignmentRepository{db: db}
}

func (r *aiAssignmentRepository) GetByTestAndGroup(ctx context.Context, testID, groupID uint) (models.AIAssignment, error) {
	var assignment models.AIAssignment
	if err := r.db.WithContext(ctx).
		Preload("Credential").
		Where("test_id = ? AND group_id = ?", testID, groupID).
		First(&assignment).Error; err != nil {
		return models.AIAssignment{}, err
	}

	return assignment, nil
}

// ListEnabledForGroups returns the enabled assignments for the given test
// across the supplied groups, ordered by group id so resolution stays
// deterministic when a student belongs to several configured groups.
func (r *aiAssignmentRepository) ListEnabledForGroups(ctx context.Context, testID uint, groupIDs []uint) ([]models.AIAssignment, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var assignments []models.AIAssignment
	if err := r.db.WithContext(ctx).
		Preload("Credential").
		Where("test_id = ? AND group_id IN ? AND ai_evaluation_enabled = ?", testID, groupIDs, true).
		Order("group_id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

// Upsert creates or updates the single assignment row for a (test, group) pair.
func (r *aiAssignmentRepository) Upsert(ctx context.Context, assignment *models.AIAssignment) error {
	var existing models.AIAssignment
	err := r.db.WithContext(ctx).
		Where("test_id = ? AND group_id = ?", assignment.TestID, assignment.GroupID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(assignment).Error
		}
		return err
	}

	assignment.ID = existing.ID
	assignment.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(assignment).Error
}
