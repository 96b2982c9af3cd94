package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lab-reservation-backend/config"
	"lab-reservation-backend/internal/api"
	"lab-reservation-backend/internal/booking"
	"lab-reservation-backend/internal/db"
	"lab-reservation-backend/internal/interval"
	"lab-reservation-backend/internal/jobs"
	"lab-reservation-backend/internal/notifier"
	"lab-reservation-backend/internal/store"
	"lab-reservation-backend/internal/sweeper"
)

func main() {
	logger := log.New(os.Stdout, "labres-backend ", log.LstdFlags)

	// Load .env before anything reads the environment. Absence is fine in
	// deployed environments where variables come from the orchestrator.
	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found, relying on the environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("a JWT secret must be configured (jwt_secret in the config file or JWT_SECRET in the environment)")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	rules := interval.Rules{
		ClosedWeekday: time.Weekday(cfg.Booking.ClosedWeekday),
		MaxSpanDays:   cfg.Booking.MaxSpanDays,
		MinDuration:   cfg.Booking.MinDuration,
		Location:      cfg.Booking.Location,
	}
	engine := booking.NewService(appStore, notifier.New(appStore), nil, rules)

	// The sweeper completes elapsed bookings in the background.
	sweep := sweeper.New(engine, nil, cfg.Sweeper.Interval)
	sweep.Start(ctx)

	// The scheduler prunes old notifications on a cron expression.
	scheduler := jobs.NewScheduler(appStore, nil, cfg.Retention)
	if err := scheduler.Start(); err != nil {
		logger.Fatalf("failed to start retention scheduler: %v", err)
	}

	router := api.NewRouter(cfg, appStore, engine, nil)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	sweep.Stop()
	scheduler.Stop()

	logger.Println("Server gracefully stopped")
}
