package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collab-edit/collab-service/config"
	"github.com/collab-edit/collab-service/internal/postgres"
	"github.com/collab-edit/collab-service/internal/registry"
	"github.com/collab-edit/collab-service/internal/service"
	httpx "github.com/collab-edit/collab-service/internal/transport/http"
	"github.com/collab-edit/collab-service/internal/transport/ws"
	"github.com/collab-edit/collab-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting collab-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- persistence sink (опционален) ---
	ctx := context.Background()
	var userLog *postgres.UserLogRepository
	var sink service.Sink
	if cfg.Postgres.DSN != "" {
		db, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		userLog = postgres.NewUserLogRepository(db.Pool)
		sink = userLog
	} else {
		slog.Warn("user log disabled: postgres.dsn is empty")
	}

	// --- core: registry + presence + router ---
	reg := registry.New()
	hub := ws.NewHub()
	presenceSvc := service.NewPresenceService(reg, hub, sink)
	routerSvc := service.NewRouterService(reg, hub)
	wsServer := ws.NewServer(hub, presenceSvc, routerSvc, ws.Options{
		PingInterval: cfg.WSPingInterval(),
		WriteTimeout: cfg.WSWriteTimeout(),
		ReadLimit:    cfg.WS.ReadLimit,
	})

	// --- HTTP ---
	handler := httpx.NewHandler(userLog, reg)
	router := httpx.NewRouter(handler, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped", "connections", reg.Len())
}
