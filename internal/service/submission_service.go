package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/repository"
)

const topStudentsLimit = 3

var (
	// ErrSubmissionNotFound indicates the submission is absent or belongs to another teacher's exercise.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrFeedbackEmpty indicates the feedback had no text left after sanitization.
	ErrFeedbackEmpty = errors.New("feedback is empty after sanitization")
)

// SubmissionService exposes graded submissions to teachers and students.
type SubmissionService interface {
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error)
	Delete(ctx context.Context, teacherID, id uint) error
	UpdateFeedback(ctx context.Context, teacherID, id uint, payload dto.FeedbackUpdateRequest) error
	Progress(ctx context.Context, userID uint) (dto.StudentProgressResponse, error)
	Statistics(ctx context.Context, teacherID uint) (dto.TeacherStatisticsResponse, error)
	InvalidateProgress(ctx context.Context, userID uint)
}

type submissionService struct {
	repo      repository.SubmissionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewSubmissionService builds the service. cache may be nil.
func NewSubmissionService(repo repository.SubmissionRepository, validate *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "submission_service").Logger(),
	}
}

func progressCacheKey(userID uint) string {
	return fmt.Sprintf("progress:user:%d", userID)
}

func (s *submissionService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.SubmissionResponse, error) {
	rows, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(rows), nil
}

func (s *submissionService) ListForStudent(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(rows), nil
}

func (s *submissionService) Delete(ctx context.Context, teacherID, id uint) error {
	submission, err := s.repo.GetOwnedByTeacher(ctx, id, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, submission.ID); err != nil {
		return err
	}

	s.InvalidateProgress(ctx, submission.UserID)
	s.logger.Info().Uint("submission_id", id).Uint("teacher_id", teacherID).Msg("submission deleted")
	return nil
}

func (s *submissionService) UpdateFeedback(ctx context.Context, teacherID, id uint, payload dto.FeedbackUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	if feedback == "" {
		return ErrFeedbackEmpty
	}

	if _, err := s.repo.GetOwnedByTeacher(ctx, id, teacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	return s.repo.UpdateFeedback(ctx, id, feedback)
}

func (s *submissionService) Progress(ctx context.Context, userID uint) (dto.StudentProgressResponse, error) {
	cacheKey := progressCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("progress cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	points, err := s.repo.ListTimeline(ctx, userID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}
	averages, err := s.repo.AverageGradesByExercise(ctx, userID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	response := dto.NewStudentProgressResponse(points, averages)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

func (s *submissionService) InvalidateProgress(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate progress cache")
	}
}

func (s *submissionService) Statistics(ctx context.Context, teacherID uint) (dto.TeacherStatisticsResponse, error) {
	stats, err := s.repo.ExerciseStats(ctx, teacherID)
	if err != nil {
		return dto.TeacherStatisticsResponse{}, err
	}
	students, err := s.repo.TopStudents(ctx, teacherID, topStudentsLimit)
	if err != nil {
		return dto.TeacherStatisticsResponse{}, err
	}
	return dto.NewTeacherStatisticsResponse(stats, students), nil
}
