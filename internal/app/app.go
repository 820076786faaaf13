package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idatech-backoffice/internal/config"
	"idatech-backoffice/internal/database"
	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/handler"
	"idatech-backoffice/internal/middleware"
	"idatech-backoffice/internal/record"
	"idatech-backoffice/internal/repository"
	"idatech-backoffice/internal/repository/memory"
	"idatech-backoffice/internal/router"
	"idatech-backoffice/internal/service"
	"idatech-backoffice/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	rules := record.DefaultRules()
	if err := record.CheckRules(rules); err != nil {
		return nil, fmt.Errorf("restore rules incomplete: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{cleanupFuncs: []func(){cancel}}

	backend, health, err := a.openBackend(ctx, cfg)
	if err != nil {
		a.cleanup()
		return nil, err
	}
	stores := backend.Stores()

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		forwarder := event.NewForwarder(bus, event.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), 5*time.Second)
		go forwarder.Run(ctx)
		a.cleanupFuncs = append(a.cleanupFuncs, func() {
			if err := forwarder.Close(); err != nil {
				slog.Warn("failed to close kafka writer", "error", err)
			}
		})
		slog.Info("forwarding events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	authService := service.NewAuthService(stores.Users, cfg.JWTSecret, cfg.JWTAccessTTL)
	if cfg.AdminPassword != "" {
		if err := authService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			a.cleanup()
			return nil, err
		}
	}

	activityService := service.NewActivityService(stores, bus)
	trashService := service.NewTrashService(backend, rules, activityService, bus)
	recordService := service.NewRecordService(stores, trashService, activityService, bus)
	dashboardService := service.NewDashboardService(backend, activityService)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Records:   handler.NewRecordHandler(recordService),
		Trash:     handler.NewTrashHandler(trashService),
		Activity:  handler.NewActivityHandler(activityService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Live:      handler.NewLiveHandler(hub, cfg.CORSOrigins),
	}, health)

	a.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (repository.Backend, router.HealthCheck, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, database.Options{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	slog.Info("database ready")

	return repository.NewPostgres(db.Pool), db.Health, nil
}

// cleanup runs in reverse registration order.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
