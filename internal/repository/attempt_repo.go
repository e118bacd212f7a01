package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/models"
)

// ErrAttemptConflict indicates a concurrent edit raced the score commit.
var ErrAttemptConflict = errors.New("attempt was modified concurrently")

// AttemptRepository defines data operations for attempts and their submissions.
type AttemptRepository interface {
	GetByID(ctx context.Context, id uint) (models.Attempt, error)
	ListPendingSubmissions(ctx context.Context, attemptID uint) ([]models.Submission, error)
	MarkCompleted(ctx context.Context, id uint, endedAt time.Time) error
	SaveResults(ctx context.Context, results []dto.SubmissionResult) error
	SumAIScores(ctx context.Context, attemptID uint) (int, error)
	CommitAIScore(ctx context.Context, attemptID uint, score float64) (models.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).
		Preload("Test").
		Preload("Student").
		Preload("Submissions").
		Preload("Submissions.Question").
		First(&attempt, id).Error; err != nil {
		return models.Attempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) ListPendingSubmissions(ctx context.Context, attemptID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Question").
		Where("attempt_id = ? AND needs_ai_grading = ? AND score IS NULL", attemptID, true).
		Order("id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *attemptRepository) MarkCompleted(ctx context.Context, id uint, endedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed": true,
			"ended_at":  endedAt,
		}).Error
}

// SaveResults persists the per-submission outcome of a grading batch in a
// single transaction, after the whole batch has been attempted. Ungraded
// submissions keep the raw model reply as feedback but receive no score.
func (r *attemptRepository) SaveResults(ctx context.Context, results []dto.SubmissionResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, result := range results {
			updates := map[string]interface{}{
				"feedback": result.Feedback,
			}
			if result.Graded {
				updates["score"] = result.Score
			}

			if err := tx.Model(&models.Submission{}).
				Where("id = ?", result.SubmissionID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SumAIScores totals the stored scores of every submission the AI pipeline
// has ever scored for the attempt, committed or not. Earlier batches count,
// so a re-dispatched attempt reports the full aggregate rather than the last
// batch alone. Pre-scored choice submissions are outside the pipeline and
// excluded.
func (r *attemptRepository) SumAIScores(ctx context.Context, attemptID uint) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("attempt_id = ? AND score IS NOT NULL AND (graded_by_ai = ? OR needs_ai_grading = ?)", attemptID, true, true).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

// CommitAIScore overwrites the attempt score and marks the scored submissions
// as AI-graded inside one transaction. The overwrite keeps replayed callbacks
// idempotent, and the attempt version guard keeps the commit from interleaving
// with a concurrent manual grading edit.
func (r *attemptRepository) CommitAIScore(ctx context.Context, attemptID uint, score float64) (models.Attempt, error) {
	var attempt models.Attempt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Submissions").First(&attempt, attemptID).Error; err != nil {
			return err
		}

		update := tx.Model(&models.Attempt{}).
			Where("id = ? AND version = ?", attempt.ID, attempt.Version).
			Updates(map[string]interface{}{
				"score":   score,
				"version": attempt.Version + 1,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrAttemptConflict
		}

		if err := tx.Model(&models.Submission{}).
			Where("attempt_id = ? AND needs_ai_grading = ? AND score IS NOT NULL", attempt.ID, true).
			Updates(map[string]interface{}{
				"needs_ai_grading": false,
				"graded_by_ai":     true,
			}).Error; err != nil {
			return err
		}

		attempt.Score = &score
		attempt.Version++
		return nil
	})
	if err != nil {
		return models.Attempt{}, err
	}

	return attempt, nil
}
