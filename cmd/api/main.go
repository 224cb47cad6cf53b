package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tidianesow/medical-e-academy/internal/config"
	"github.com/tidianesow/medical-e-academy/internal/database"
	"github.com/tidianesow/medical-e-academy/internal/handler"
	"github.com/tidianesow/medical-e-academy/internal/middleware"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/repository"
	"github.com/tidianesow/medical-e-academy/internal/router"
	"github.com/tidianesow/medical-e-academy/internal/service"
	"github.com/tidianesow/medical-e-academy/internal/utils"
	"github.com/tidianesow/medical-e-academy/pkg/orthanc"
	"github.com/tidianesow/medical-e-academy/pkg/similarity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	scorer, err := newScorer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure similarity scorer")
	}

	validate := utils.NewValidator()

	userRepo := repository.NewUserRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)

	if err := badgeRepo.UpsertCatalog(rootCtx, models.DefaultBadgeCatalog()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed badge catalog")
	}

	badgeService := service.NewBadgeService(submissionRepo, badgeRepo, logger)
	submissionService := service.NewSubmissionService(submissionRepo, validate, redisClient, cfg.ProgressCacheTTL, logger)

	var badgeTrigger service.BadgeTrigger
	var asyncDispatcher *service.AsyncBadgeDispatcher
	switch cfg.BadgeDispatch {
	case config.BadgeDispatchNATS:
		badgeTrigger = service.NewNATSBadgeDispatcher(natsConn, cfg.NATSSubjectBase, logger)
		worker := service.NewBadgeWorker(natsConn, cfg.NATSSubjectBase, badgeService, cfg.BadgeTimeout, logger)
		if err := worker.Start(rootCtx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start badge worker")
		}
	default:
		asyncDispatcher = service.NewAsyncBadgeDispatcher(badgeService, cfg.BadgeTimeout, logger)
		badgeTrigger = asyncDispatcher
	}

	gradingService := service.NewGradingService(exerciseRepo, submissionRepo, scorer, badgeTrigger, submissionService, validate, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	exerciseService := service.NewExerciseService(exerciseRepo, validate, logger)

	deps := router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		ExerciseHandler:   handler.NewExerciseHandler(exerciseService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, badgeService, logger),
		Guards: handler.RouteGuards{
			Authenticated: middleware.JWTProtected(cfg.JWTSecret),
			Optional:      middleware.OptionalJWT(cfg.JWTSecret),
			Teacher:       middleware.RequireRole(models.RoleTeacher),
			Grading:       middleware.RateLimit("grading", cfg.GradingRateLimit, cfg.GradingRateWindow),
		},
	}

	if cfg.OrthancURL != "" {
		archive, err := orthanc.New(orthanc.Config{
			BaseURL:  cfg.OrthancURL,
			Username: cfg.OrthancUser,
			Password: cfg.OrthancPassword,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure orthanc client")
		}
		studyService := service.NewStudyService(archive, redisClient, cfg.StudiesCacheTTL, logger)
		deps.StudyHandler = handler.NewStudyHandler(studyService, logger)
	} else {
		logger.Warn().Msg("orthanc url not set, dicom study listing disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: errorHandler(logger),
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, deps)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
	cancel()
	if asyncDispatcher != nil {
		asyncDispatcher.Wait()
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("service", cfg.AppName).
		Str("env", cfg.AppEnv).
		Logger()
}

func newScorer(cfg config.Config, logger zerolog.Logger) (similarity.Scorer, error) {
	switch cfg.SimilarityProvider {
	case "openai":
		return similarity.NewOpenAIScorer(similarity.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIEmbeddingModel,
			Timeout: cfg.SimilarityTimeout,
			Logger:  logger,
		})
	case "huggingface", "":
		return similarity.NewHuggingFaceScorer(similarity.HuggingFaceConfig{
			APIKey:  cfg.SimilarityAPIKey,
			URL:     cfg.SimilarityURL,
			Timeout: cfg.SimilarityTimeout,
			Logger:  logger,
		})
	default:
		return nil, errors.New("unsupported similarity provider " + cfg.SimilarityProvider)
	}
}

func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}
		return utils.SendError(c, status, message)
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
