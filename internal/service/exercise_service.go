package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/repository"
)

// ExerciseService manages teacher-authored diagnostic exercises.
type ExerciseService interface {
	List(ctx context.Context, createdBy *uint) ([]dto.ExerciseResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.ExerciseRequest) (dto.ExerciseResponse, error)
	Update(ctx context.Context, teacherID, id uint, payload dto.ExerciseRequest) (dto.ExerciseResponse, error)
	Delete(ctx context.Context, teacherID, id uint) error
}

type exerciseService struct {
	repo      repository.ExerciseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewExerciseService constructs the exercise service.
func NewExerciseService(repo repository.ExerciseRepository, validate *validator.Validate, logger zerolog.Logger) ExerciseService {
	return &exerciseService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "exercise_service").Logger(),
	}
}

func (s *exerciseService) List(ctx context.Context, createdBy *uint) ([]dto.ExerciseResponse, error) {
	exercises, err := s.repo.List(ctx, createdBy)
	if err != nil {
		return nil, err
	}
	return dto.NewExerciseResponseSlice(exercises), nil
}

func (s *exerciseService) Create(ctx context.Context, teacherID uint, payload dto.ExerciseRequest) (dto.ExerciseResponse, error) {
	payload = s.clean(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExerciseResponse{}, err
	}

	exercise := models.Exercise{
		Title:         payload.Title,
		StudyID:       payload.StudyID,
		Question:      payload.Question,
		CorrectAnswer: payload.CorrectAnswer,
		CreatedBy:     teacherID,
	}
	if err := s.repo.Create(ctx, &exercise); err != nil {
		return dto.ExerciseResponse{}, err
	}

	s.logger.Info().Uint("exercise_id", exercise.ID).Uint("teacher_id", teacherID).Msg("exercise created")
	return dto.NewExerciseResponse(exercise), nil
}

func (s *exerciseService) Update(ctx context.Context, teacherID, id uint, payload dto.ExerciseRequest) (dto.ExerciseResponse, error) {
	payload = s.clean(payload)
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExerciseResponse{}, err
	}

	exercise := models.Exercise{
		ID:            id,
		Title:         payload.Title,
		StudyID:       payload.StudyID,
		Question:      payload.Question,
		CorrectAnswer: payload.CorrectAnswer,
		CreatedBy:     teacherID,
	}
	if err := s.repo.UpdateOwned(ctx, &exercise); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExerciseResponse{}, ErrExerciseNotFound
		}
		return dto.ExerciseResponse{}, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExerciseResponse{}, ErrExerciseNotFound
		}
		return dto.ExerciseResponse{}, err
	}
	return dto.NewExerciseResponse(updated), nil
}

func (s *exerciseService) Delete(ctx context.Context, teacherID, id uint) error {
	removed, err := s.repo.DeleteOwned(ctx, id, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	s.logger.Info().
		Uint("exercise_id", id).
		Uint("teacher_id", teacherID).
		Int64("submissions_removed", removed).
		Msg("exercise deleted")
	return nil
}

// clean strips markup from display fields. The reference answer is only
// trimmed since it is compared verbatim by the scorer.
func (s *exerciseService) clean(payload dto.ExerciseRequest) dto.ExerciseRequest {
	payload.Title = strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	payload.Question = strings.TrimSpace(s.sanitizer.Sanitize(payload.Question))
	payload.StudyID = strings.TrimSpace(payload.StudyID)
	payload.CorrectAnswer = strings.TrimSpace(payload.CorrectAnswer)
	return payload
}
