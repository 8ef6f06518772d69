package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"registration-service/internal/api"
	"registration-service/internal/config"
	"registration-service/internal/database"
	"registration-service/internal/events"
	"registration-service/internal/repository"
	"registration-service/internal/service"
	"registration-service/internal/tracing"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	api.SetupGlobalHandler(os.Stdout, cfg.ServiceName)
	slog.Info("Logger initialized", "service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	slog.Info("Successfully connected to the database.", "driver", cfg.Database.Driver)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println("Migrations applied successfully!")
		return
	}

	shutdownTracer, err := tracing.InitTracerProvider(ctx, cfg.ServiceName, cfg.OtelEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("Error shutting down tracer provider", "error", err)
		}
	}()

	var publisher events.EventPublisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		publisher = natsPublisher
		slog.Info("Successfully connected to NATS.", "url", cfg.NatsURL)
	} else {
		slog.Info("NATS_URL not set, user events will not be published")
	}
	defer publisher.Close()

	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, publisher)
	userHandler := api.NewUserHandler(userService)

	app := api.NewApp(cfg.ServiceName, userHandler)

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down HTTP server")
		if err := app.Shutdown(); err != nil {
			slog.Error("Error shutting down HTTP server", "error", err)
		}
	}()

	slog.Info("Listening", "service", cfg.ServiceName, "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
