package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/models"
)

// ExerciseRepository defines data operations for exercises.
type ExerciseRepository interface {
	List(ctx context.Context, createdBy *uint) ([]models.Exercise, error)
	GetByID(ctx context.Context, id uint) (models.Exercise, error)
	GetCorrectAnswer(ctx context.Context, id uint) (string, error)
	Create(ctx context.Context, exercise *models.Exercise) error
	UpdateOwned(ctx context.Context, exercise *models.Exercise) error
	DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error)
}

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository instantiates the repository.
func NewExerciseRepository(db *gorm.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) List(ctx context.Context, createdBy *uint) ([]models.Exercise, error) {
	query := r.db.WithContext(ctx).Model(&models.Exercise{})
	if createdBy != nil {
		query = query.Where("created_by = ?", *createdBy)
	}

	var exercises []models.Exercise
	if err := query.Order("id ASC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id uint) (models.Exercise, error) {
	var exercise models.Exercise
	if err := r.db.WithContext(ctx).First(&exercise, id).Error; err != nil {
		return models.Exercise{}, err
	}
	return exercise, nil
}

// GetCorrectAnswer returns gorm.ErrRecordNotFound when the exercise does not exist.
func (r *exerciseRepository) GetCorrectAnswer(ctx context.Context, id uint) (string, error) {
	var answers []string
	err := r.db.WithContext(ctx).
		Model(&models.Exercise{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("correct_answer", &answers).Error
	if err != nil {
		return "", err
	}
	if len(answers) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return answers[0], nil
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	return r.db.WithContext(ctx).Create(exercise).Error
}

// UpdateOwned rewrites the editable fields when exercise.CreatedBy owns the row.
func (r *exerciseRepository) UpdateOwned(ctx context.Context, exercise *models.Exercise) error {
	result := r.db.WithContext(ctx).
		Model(&models.Exercise{}).
		Where("id = ? AND created_by = ?", exercise.ID, exercise.CreatedBy).
		Updates(map[string]interface{}{
			"title":          exercise.Title,
			"study_id":       exercise.StudyID,
			"question":       exercise.Question,
			"correct_answer": exercise.CorrectAnswer,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOwned removes the exercise and its submissions in one transaction and
// returns how many submissions were removed.
func (r *exerciseRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exercise models.Exercise
		if err := tx.Where("id = ? AND created_by = ?", id, ownerID).First(&exercise).Error; err != nil {
			return err
		}

		result := tx.Where("exercise_id = ?", exercise.ID).Delete(&models.Submission{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		return tx.Delete(&exercise).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
