package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/observability"
	"github.com/tidianesow/medical-e-academy/pkg/similarity"
)

// ErrExerciseNotFound indicates the exercise does not exist or is not visible to the caller.
var ErrExerciseNotFound = errors.New("exercise not found")

// ReferenceAnswerLookup resolves the stored correct answer of an exercise.
type ReferenceAnswerLookup interface {
	GetCorrectAnswer(ctx context.Context, exerciseID uint) (string, error)
}

// SubmissionRecorder stores graded submissions.
type SubmissionRecorder interface {
	Create(ctx context.Context, submission *models.Submission) error
}

// BadgeTrigger starts a badge evaluation for a user without waiting for it.
type BadgeTrigger interface {
	Trigger(userID uint)
}

// ProgressInvalidator drops cached progress views for a user.
type ProgressInvalidator interface {
	InvalidateProgress(ctx context.Context, userID uint)
}

// GradingService grades free-text answers against the exercise reference answer.
type GradingService interface {
	Submit(ctx context.Context, payload dto.GradeSubmitRequest) (dto.GradeResponse, error)
	Evaluate(ctx context.Context, payload dto.GradeEvaluateRequest) (dto.GradeResponse, error)
}

type gradingService struct {
	exercises   ReferenceAnswerLookup
	submissions SubmissionRecorder
	scorer      similarity.Scorer
	badges      BadgeTrigger
	progress    ProgressInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradingService wires the grading pipeline. badges and progress may be nil.
func NewGradingService(exercises ReferenceAnswerLookup, submissions SubmissionRecorder, scorer similarity.Scorer, badges BadgeTrigger, progress ProgressInvalidator, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		exercises:   exercises,
		submissions: submissions,
		scorer:      scorer,
		badges:      badges,
		progress:    progress,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/tidianesow/medical-e-academy/internal/service/grading"),
	}
}

func (s *gradingService) Submit(ctx context.Context, payload dto.GradeSubmitRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.submit", trace.WithAttributes(
		attribute.Int64("grading.exercise_id", int64(payload.ExerciseID)),
		attribute.Int64("grading.user_id", int64(payload.UserID)),
	))
	defer span.End()

	payload.Answer = strings.TrimSpace(payload.Answer)
	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	result, err := s.grade(ctx, span, payload.ExerciseID, payload.Answer)
	if err != nil {
		return dto.GradeResponse{}, err
	}

	submission := models.Submission{
		ExerciseID: payload.ExerciseID,
		UserID:     payload.UserID,
		Answer:     payload.Answer,
		Grade:      result.Percentage,
		Feedback:   result.Feedback,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.GradeResponse{}, fmt.Errorf("store submission: %w", err)
	}

	observability.GradedAnswers().WithLabelValues("submit", string(result.Tier)).Inc()
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("exercise_id", payload.ExerciseID).
		Uint("user_id", payload.UserID).
		Int("grade", result.Percentage).
		Msg("submission graded")

	if s.progress != nil {
		s.progress.InvalidateProgress(ctx, payload.UserID)
	}
	if s.badges != nil {
		s.badges.Trigger(payload.UserID)
	}

	return dto.GradeResponse{Grade: result.Percentage, Feedback: result.Feedback}, nil
}

func (s *gradingService) Evaluate(ctx context.Context, payload dto.GradeEvaluateRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.evaluate", trace.WithAttributes(
		attribute.Int64("grading.exercise_id", int64(payload.ExerciseID)),
	))
	defer span.End()

	payload.Answer = strings.TrimSpace(payload.Answer)
	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	result, err := s.grade(ctx, span, payload.ExerciseID, payload.Answer)
	if err != nil {
		return dto.GradeResponse{}, err
	}

	observability.GradedAnswers().WithLabelValues("evaluate", string(result.Tier)).Inc()

	return dto.GradeResponse{Grade: result.Percentage, Feedback: result.Feedback}, nil
}

// grade looks up the reference answer and scores the candidate. A scorer
// failure grades the answer as 0 rather than failing the request.
func (s *gradingService) grade(ctx context.Context, span trace.Span, exerciseID uint, answer string) (GradeResult, error) {
	reference, err := s.exercises.GetCorrectAnswer(ctx, exerciseID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "exercise_not_found")
			return GradeResult{}, ErrExerciseNotFound
		}
		span.SetStatus(codes.Error, "exercise_lookup_failed")
		return GradeResult{}, fmt.Errorf("lookup exercise: %w", err)
	}

	score, err := s.scorer.Score(ctx, answer, reference)
	if err != nil {
		s.logger.Warn().Err(err).Uint("exercise_id", exerciseID).Msg("similarity scoring failed, grading as zero")
		span.AddEvent("similarity_unavailable")
		score = 0
	}

	result := GradeFromSimilarity(score, reference)
	span.SetAttributes(attribute.Int("grading.grade", result.Percentage))
	return result, nil
}
