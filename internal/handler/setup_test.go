package handler_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/database"
	"github.com/tidianesow/medical-e-academy/internal/handler"
	"github.com/tidianesow/medical-e-academy/internal/middleware"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/repository"
	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
)

const testJWTSecret = "handler-test-secret"

type stubScorer struct {
	score float64
	err   error
	calls int
}

func (s *stubScorer) Score(ctx context.Context, candidate, reference string) (float64, error) {
	s.calls++
	return s.score, s.err
}

// syncBadges evaluates inline so tests can assert awards right after submit.
type syncBadges struct {
	evaluator service.BadgeService
}

func (s syncBadges) Trigger(userID uint) {
	s.evaluator.EvaluateUser(context.Background(), userID)
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	scorer *stubScorer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zerolog.Nop()
	validate := utils.NewValidator()

	userRepo := repository.NewUserRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	require.NoError(t, badgeRepo.UpsertCatalog(context.Background(), models.DefaultBadgeCatalog()))

	scorer := &stubScorer{score: 0.95}
	badgeService := service.NewBadgeService(submissionRepo, badgeRepo, logger)
	submissionService := service.NewSubmissionService(submissionRepo, validate, nil, time.Minute, logger)
	gradingService := service.NewGradingService(exerciseRepo, submissionRepo, scorer, syncBadges{badgeService}, submissionService, validate, logger)

	guards := handler.RouteGuards{
		Authenticated: middleware.JWTProtected(testJWTSecret),
		Optional:      middleware.OptionalJWT(testJWTSecret),
		Teacher:       middleware.RequireRole(models.RoleTeacher),
		Grading:       func(c *fiber.Ctx) error { return c.Next() },
	}

	app := fiber.New()
	handler.NewAuthHandler(service.NewAuthService(userRepo, validate, testJWTSecret, time.Hour, logger), logger).Register(app.Group("/api/auth"))
	exercises := app.Group("/api/exercises")
	handler.NewGradingHandler(gradingService, logger).Register(exercises, guards)
	handler.NewSubmissionHandler(submissionService, badgeService, logger).Register(exercises, guards)
	handler.NewExerciseHandler(service.NewExerciseService(exerciseRepo, validate, logger), logger).Register(exercises, guards)

	return &testEnv{app: app, db: db, scorer: scorer}
}

func (e *testEnv) user(t *testing.T, name, role string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "unused",
		Role:     role,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) exercise(t *testing.T, ownerID uint, title, answer string) models.Exercise {
	t.Helper()
	exercise := models.Exercise{
		Title:         title,
		StudyID:       "1.2.826.0.1." + title,
		Question:      "Describe the main finding.",
		CorrectAnswer: answer,
		CreatedBy:     ownerID,
	}
	require.NoError(t, e.db.Create(&exercise).Error)
	return exercise
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}
