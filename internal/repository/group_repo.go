package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/models"
)

// GroupRepository defines data operations for group membership.
type GroupRepository interface {
	ListGroupIDsForStudent(ctx context.Context, studentID uint) ([]uint, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) ListGroupIDsForStudent(ctx context.Context, studentID uint) ([]uint, error) {
	var groupIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("student_id = ?", studentID).
		Order("group_id ASC").
		Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, err
	}

	return groupIDs, nil
}
