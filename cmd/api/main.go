package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rvalenzuelab/voznote/internal/api/handlers"
	"github.com/rvalenzuelab/voznote/internal/api/router"
	"github.com/rvalenzuelab/voznote/internal/config"
	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/validator"
	"github.com/rvalenzuelab/voznote/internal/providers"
	"github.com/rvalenzuelab/voznote/internal/repository/postgres"
	"github.com/rvalenzuelab/voznote/internal/repository/sqlite"
	"github.com/rvalenzuelab/voznote/internal/services"
	"github.com/rvalenzuelab/voznote/internal/worker"
)

// lifecycleInterval is how often the background pass re-evaluates every user
const lifecycleInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	// Local cache, always on
	localDB, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer localDB.Close()

	localSettings := sqlite.NewSettingsRepository(localDB)
	localRecordings := sqlite.NewRecordingRepository(localDB)
	userRepo := sqlite.NewUserRepository(localDB)

	// Remote mirror, optional
	var remoteSettings settings.Repository
	var remoteRecordings recording.Repository
	if cfg.Store.MirrorEnabled {
		remoteDB, err := postgres.Open(cfg.Store.MirrorDSN)
		if err != nil {
			log.Fatalf("Failed to open mirror: %v", err)
		}
		defer remoteDB.Close()

		remoteSettings = postgres.NewSettingsRepository(remoteDB)
		remoteRecordings = postgres.NewRecordingRepository(remoteDB)
		log.Info("Remote mirror enabled")
	} else {
		log.Info("Remote mirror disabled, running local-only")
	}

	// Services
	settingsStore := services.NewSettingsStore(localSettings, remoteSettings, cfg.AI.MonthlyCredits, log)

	recordingService, err := services.NewRecordingService(localRecordings, remoteRecordings, cfg.Store.AudioDir, cfg.Retention, log)
	if err != nil {
		log.Fatalf("Failed to initialize recording service: %v", err)
	}

	userService := services.NewUserService(userRepo, cfg.Auth.BCryptCost, log)

	var gateway services.Gateway
	if cfg.PaymentsConfigured() {
		gateway = providers.NewFlowClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.SecretKey)
	} else {
		log.Warn("Payment gateway credentials missing, checkout disabled")
	}
	paymentService := services.NewPaymentService(gateway, settingsStore, cfg.Payment, log)

	var transcriber providers.Transcriber
	if cfg.AIConfigured() {
		transcriber = providers.NewOpenAITranscriber(cfg.AI.OpenAIAPIKey)
	} else {
		log.Warn("OpenAI API key missing, transcription disabled")
	}
	transcriptionService := services.NewTranscriptionService(transcriber, settingsStore, recordingService, log)

	// HTTP layer
	val := validator.New()
	h := &router.Handlers{
		Health:    handlers.NewHealthHandler(localDB, log),
		Auth:      handlers.NewAuthHandler(userService, cfg, log, val),
		Settings:  handlers.NewSettingsHandler(settingsStore, log),
		Recording: handlers.NewRecordingHandler(recordingService, transcriptionService, log, val),
		Payment:   handlers.NewPaymentHandler(paymentService, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewRetentionSweeper(recordingService, cfg.Retention.SweepSchedule, log)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("Failed to start retention sweeper: %v", err)
	}

	lifecycle := worker.NewLifecycleRunner(settingsStore, lifecycleInterval, log)
	go lifecycle.Start(ctx)

	// Serve
	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Forced shutdown")
	}

	log.Info("Server stopped")
}
