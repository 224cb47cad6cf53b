package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/observability"
	"github.com/tidianesow/medical-e-academy/internal/repository"
)

const (
	completedExercisesForBadge = 5
	highScoresForBadge         = 3
)

// GradeHistory lists the distinct (exercise, grade) pairs a user has earned.
type GradeHistory interface {
	ListGradesByUser(ctx context.Context, userID uint) ([]repository.ExerciseGrade, error)
}

// BadgeStore checks and records badge awards.
type BadgeStore interface {
	HasBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) (bool, error)
	AwardBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) error
	ListByUser(ctx context.Context, userID uint) ([]repository.UserBadgeRow, error)
}

// BadgeService awards achievement badges from a user's grading history.
type BadgeService interface {
	EvaluateUser(ctx context.Context, userID uint)
	ListForUser(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error)
}

type badgeRule struct {
	criteria  models.BadgeCriteria
	satisfied func(grades []repository.ExerciseGrade) bool
}

var badgeRules = []badgeRule{
	{criteria: models.BadgeCriteriaCompleteFiveExercises, satisfied: completedFiveExercises},
	{criteria: models.BadgeCriteriaHighScoreThreeExercises, satisfied: scoredHighThreeTimes},
}

func completedFiveExercises(grades []repository.ExerciseGrade) bool {
	exercises := make(map[uint]struct{}, len(grades))
	for _, grade := range grades {
		exercises[grade.ExerciseID] = struct{}{}
	}
	return len(exercises) >= completedExercisesForBadge
}

// scoredHighThreeTimes counts distinct (exercise, grade) pairs, so two
// different high grades on one exercise count twice.
func scoredHighThreeTimes(grades []repository.ExerciseGrade) bool {
	seen := make(map[repository.ExerciseGrade]struct{}, len(grades))
	for _, grade := range grades {
		if grade.Grade >= models.HighScoreGrade {
			seen[grade] = struct{}{}
		}
	}
	return len(seen) >= highScoresForBadge
}

type badgeService struct {
	history GradeHistory
	store   BadgeStore
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewBadgeService constructs the badge evaluator.
func NewBadgeService(history GradeHistory, store BadgeStore, logger zerolog.Logger) BadgeService {
	return &badgeService{
		history: history,
		store:   store,
		logger:  logger.With().Str("component", "badge_service").Logger(),
		tracer:  otel.Tracer("github.com/tidianesow/medical-e-academy/internal/service/badge"),
	}
}

// EvaluateUser applies every rule to the user's history. Failures are logged
// and leave the affected badge unawarded.
func (s *badgeService) EvaluateUser(ctx context.Context, userID uint) {
	ctx, span := s.tracer.Start(ctx, "badges.evaluate", trace.WithAttributes(
		attribute.Int64("badges.user_id", int64(userID)),
	))
	defer span.End()

	grades, err := s.history.ListGradesByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		observability.BadgeFailures().WithLabelValues("history").Inc()
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to load grading history")
		return
	}

	for _, rule := range badgeRules {
		if !rule.satisfied(grades) {
			continue
		}
		s.awardOnce(ctx, userID, rule.criteria)
	}
}

func (s *badgeService) awardOnce(ctx context.Context, userID uint, criteria models.BadgeCriteria) {
	log := s.logger.With().Uint("user_id", userID).Str("criteria", string(criteria)).Logger()

	held, err := s.store.HasBadge(ctx, userID, criteria)
	if err != nil {
		observability.BadgeFailures().WithLabelValues("lookup").Inc()
		log.Error().Err(err).Msg("failed to check badge ownership")
		return
	}
	if held {
		return
	}

	if err := s.store.AwardBadge(ctx, userID, criteria); err != nil {
		if errors.Is(err, repository.ErrBadgeAlreadyAwarded) {
			log.Debug().Msg("badge awarded concurrently")
			return
		}
		observability.BadgeFailures().WithLabelValues("award").Inc()
		log.Error().Err(err).Msg("failed to award badge")
		return
	}

	observability.BadgeAwards().WithLabelValues(string(criteria)).Inc()
	log.Info().Msg("badge awarded")
}

func (s *badgeService) ListForUser(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserBadgeResponseSlice(rows), nil
}
