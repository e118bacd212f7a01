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
	"github.com/examforge/examforge-api/internal/repository"
	"github.com/examforge/examforge-api/internal/router"
	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/pkg/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.ValidateGrader(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "grader").Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	attemptRepo := repository.NewAttemptRepository(db)
	promptRepo := repository.NewPromptRepository(db)

	if err := promptRepo.EnsureDefault(context.Background()); err != nil {
		log.Fatalf("failed to seed default grading prompt: %v", err)
	}

	client := llm.NewClient(llm.Config{
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		DeepSeekBaseURL:  cfg.DeepSeekBaseURL,
		Temperature:      cfg.AITemperature,
		MaxTokens:        cfg.AIMaxTokens,
		Timeout:          cfg.AIRequestTimeout,
		Logger:           logger,
	})

	evaluator := service.NewEvaluationService(attemptRepo, promptRepo, client, logger)
	reporter := service.NewResultReporter(cfg.PrimaryBaseURL, cfg.InternalAPIKey, cfg.AIRequestTimeout, logger)
	runner := service.NewGradingRunService(evaluator, attemptRepo, reporter, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName + " Grader",
		ServerHeader: cfg.AppName + " Grader",
	})

	middleware.Register(app, middleware.Config{Service: "grader", Logger: &logger})
	router.RegisterGrader(app, cfg, router.GraderDependencies{
		GradeHandler: handler.NewGradeHandler(runner, validate, logger),
	})

	go func() {
		if err := app.Listen(cfg.GraderAddress()); err != nil {
			log.Fatalf("failed to start grader: %v", err)
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

	log.Println("grader stopped")
}
