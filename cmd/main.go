package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/db"
	"github.com/talentvine/talentvine-backend/internal/http/handlers"
	"github.com/talentvine/talentvine-backend/internal/http/middleware"
	"github.com/talentvine/talentvine-backend/internal/observability"
	"github.com/talentvine/talentvine-backend/internal/platform/envutil"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
	"github.com/talentvine/talentvine-backend/internal/realtime/bus"
	"github.com/talentvine/talentvine-backend/internal/server"
	"github.com/talentvine/talentvine-backend/internal/services"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, log, observability.Config{
		ServiceName: "talentvine-backend",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	jobRepo := repos.NewJobRepo(thePG, log)
	consultantRepo := repos.NewConsultantRepo(thePG, log)
	assignmentRepo := repos.NewAssignmentRepo(thePG, log)
	notificationRepo := repos.NewNotificationRepo(thePG, log)

	// Realtime bus: optional, notifications degrade to persisted rows only.
	var realtimeBus bus.Bus
	if rb, err := bus.NewRedisBus(log); err != nil {
		log.Warn("Realtime bus unavailable, pushes disabled", "error", err)
	} else {
		realtimeBus = rb
		defer func() { _ = rb.Close() }()
	}

	// Services
	log.Info("Setting up services...")
	notifier := services.NewAssignmentNotifier(log, notificationRepo, realtimeBus)
	txRunner := services.NewTxRunner(thePG, log, services.TxRunnerConfigFromEnv())
	allocationService := services.NewAllocationService(thePG, log, txRunner, jobRepo, consultantRepo, assignmentRepo, notifier)
	selectionService := services.NewSelectionService(thePG, log, jobRepo, consultantRepo, allocationService)

	// HTTP
	authMiddleware := middleware.NewAuthMiddleware(log, envutil.String("JWT_SECRET_KEY", "defaultsecret"))
	allocationHandler := handlers.NewAllocationHandler(allocationService, selectionService)
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		AuthMiddleware:    authMiddleware,
		AllocationHandler: allocationHandler,
		ServiceName:       "talentvine-backend",
	})

	addr := ":" + envutil.String("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("Tracing shutdown error", "error", err)
	}
}
