package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/config"
	"github.com/examforge/examforge-api/internal/database"
	"github.com/examforge/examforge-api/internal/handler"
	"github.com/examforge/examforge-api/internal/middleware"
	"github.com/examforge/examforge-api/internal/models"
	"github.com/examforge/examforge-api/internal/repository"
	"github.com/examforge/examforge-api/internal/router"
	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/internal/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.ValidatePrimary(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{}, &models.Group{}, &models.GroupMember{},
		&models.Test{}, &models.Question{},
		&models.Attempt{}, &models.Submission{},
		&models.Credential{}, &models.AIAssignment{}, &models.Prompt{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNats(cfg.NatsURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	keyVault, err := vault.New(cfg.VaultKey)
	if err != nil {
		log.Fatalf("failed to initialise credential vault: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	credentialRepo := repository.NewCredentialRepository(db)
	assignmentRepo := repository.NewAIAssignmentRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	if err := promptRepo.EnsureDefault(context.Background()); err != nil {
		log.Fatalf("failed to seed default grading prompt: %v", err)
	}

	eligibility := service.NewEligibilityService(groupRepo, assignmentRepo, logger)
	dispatcher := service.NewGradingDispatcher(attemptRepo, eligibility, keyVault, redisClient, service.DispatcherConfig{
		GraderBaseURL:  cfg.GraderBaseURL,
		InternalAPIKey: cfg.InternalAPIKey,
		Workers:        cfg.DispatchWorkers,
		QueueSize:      cfg.DispatchQueue,
		LockTTL:        cfg.DispatchLockTTL,
		RequestTimeout: cfg.AIRequestTimeout,
	}, logger)
	defer dispatcher.Close()

	attemptService := service.NewAttemptService(attemptRepo, dispatcher, logger)
	credentialService := service.NewCredentialService(credentialRepo, keyVault, validate, logger)
	assignmentService := service.NewAIAssignmentService(assignmentRepo, credentialRepo, promptRepo, validate, logger)
	promptService := service.NewPromptService(promptRepo, validate, logger)
	commitService := service.NewGradingCommitService(attemptRepo, redisClient, natsConn, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Service: "api", Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AttemptHandler:         handler.NewAttemptHandler(attemptService, logger),
		CredentialHandler:      handler.NewCredentialHandler(credentialService, logger),
		AIAssignmentHandler:    handler.NewAIAssignmentHandler(assignmentService, logger),
		PromptHandler:          handler.NewPromptHandler(promptService, logger),
		InternalGradingHandler: handler.NewInternalGradingHandler(commitService, logger),
		JWTMiddleware:          middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
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
