package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kodigo-go-api/internal/config"
	"github.com/noah-isme/kodigo-go-api/internal/database"
	"github.com/noah-isme/kodigo-go-api/internal/gamification"
	"github.com/noah-isme/kodigo-go-api/internal/handler"
	"github.com/noah-isme/kodigo-go-api/internal/middleware"
	"github.com/noah-isme/kodigo-go-api/internal/models"
	"github.com/noah-isme/kodigo-go-api/internal/repository"
	"github.com/noah-isme/kodigo-go-api/internal/router"
	"github.com/noah-isme/kodigo-go-api/internal/service"
	"github.com/noah-isme/kodigo-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Challenge{}, &models.Submission{}, &models.Transaction{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, submission quotas fall back to the database")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	evaluator, err := buildEvaluator(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create evaluator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	transactionService := service.NewTransactionService(transactionRepo, logger)
	userService := service.NewUserService(userRepo, transactionService, logger)
	challengeService := service.NewChallengeService(challengeRepo, cfg.Location(), logger)

	limiter := service.NewSubmissionLimiter(redisClient, submissionRepo,
		cfg.SubmissionRateLimit, cfg.SubmissionRateWindow, logger)
	queue := service.NewGradingQueue(natsConn, cfg.GradingBuffer, logger)
	defer queue.Close()

	submissionService := service.NewSubmissionService(service.SubmissionServiceParams{
		Submissions:       submissionRepo,
		Challenges:        challengeRepo,
		Users:             userService,
		Evaluator:         evaluator,
		Policy:            gamification.PolicyFromName(cfg.RewardPolicy),
		Limiter:           limiter,
		Queue:             queue,
		WeekendOnly:       cfg.WeekendOnly,
		Location:          cfg.Location(),
		EvaluationTimeout: cfg.EvaluationTimeout,
		Logger:            logger,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	err = queue.Start(workerCtx, func(ctx context.Context, submissionID uint) {
		err := submissionService.Evaluate(ctx, submissionID)
		if err != nil && !errors.Is(err, service.ErrAlreadyEvaluated) {
			logger.Error().Err(err).Uint("submission_id", submissionID).Msg("grading job failed")
		}
	})
	if err != nil {
		log.Fatalf("failed to start grading worker: %v", err)
	}

	submissionHandler := handler.NewSubmissionHandler(submissionService, validate, logger)
	challengeHandler := handler.NewChallengeHandler(challengeService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler:  submissionHandler,
		ChallengeHandler:   challengeHandler,
		UserHandler:        userHandler,
		TransactionHandler: transactionHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildEvaluator(cfg config.Config, logger zerolog.Logger) (ai.Evaluator, error) {
	if cfg.AIProvider == "openai" {
		return ai.NewOpenAIEvaluator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
	}

	return ai.NewOllamaEvaluator(ai.OllamaConfig{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
		Timeout: cfg.EvaluationTimeout,
		Logger:  logger,
	})
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
