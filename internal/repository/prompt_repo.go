package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/models"
)

// ErrDefaultPromptProtected indicates an attempt to delete or reassign the built-in prompt.
var ErrDefaultPromptProtected = errors.New("default prompt cannot be modified")

const defaultPromptTemplate = `You are grading one answer in a student exam.

Question:
{{QUESTION}}

{{CORRECT_ANSWER_SECTION}}

Student answer:
{{STUDENT_ANSWER}}

Award an integer score between 0 and {{MAX_SCORE}}. Reply with the score in the form "Score: N/{{MAX_SCORE}}" followed by one or two sentences of feedback for the student.`

// PromptRepository defines data operations for grading prompt templates.
type PromptRepository interface {
	GetByID(ctx context.Context, id uint) (models.Prompt, error)
	List(ctx context.Context) ([]models.Prompt, error)
	Create(ctx context.Context, prompt *models.Prompt) error
	Delete(ctx context.Context, id uint) error
	EnsureDefault(ctx context.Context) error
}

type promptRepository struct {
	db *gorm.DB
}

// NewPromptRepository instantiates the repository.
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) GetByID(ctx context.Context, id uint) (models.Prompt, error) {
	var prompt models.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, id).Error; err != nil {
		return models.Prompt{}, err
	}

	return prompt, nil
}

func (r *promptRepository) List(ctx context.Context) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&prompts).Error; err != nil {
		return nil, err
	}

	return prompts, nil
}

func (r *promptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	return r.db.WithContext(ctx).Create(prompt).Error
}

func (r *promptRepository) Delete(ctx context.Context, id uint) error {
	if id == models.DefaultPromptID {
		return ErrDefaultPromptProtected
	}

	return r.db.WithContext(ctx).Delete(&models.Prompt{}, id).Error
}

// EnsureDefault seeds the protected built-in prompt when it is missing.
// A process must not start without it; the prompt builder treats its absence
// as a fatal configuration error.
func (r *promptRepository) EnsureDefault(ctx context.Context) error {
	var prompt models.Prompt
	err := r.db.WithContext(ctx).First(&prompt, models.DefaultPromptID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	seed := models.Prompt{
		ID:       models.DefaultPromptID,
		Name:     "Default grading prompt",
		Template: defaultPromptTemplate,
		Version:  1,
	}
	return r.db.WithContext(ctx).Create(&seed).Error
}
