package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"municipal-docs/internal/audit"
	"municipal-docs/internal/auth"
	"municipal-docs/internal/config"
	"municipal-docs/internal/httpapi"
	"municipal-docs/internal/metrics"
	"municipal-docs/internal/rbac"
	"municipal-docs/internal/revocation"
	"municipal-docs/internal/users"
	"municipal-docs/pkg/logger"
	"municipal-docs/pkg/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.OpenPostgres(rootCtx, cfg.PostgresDSN(), store.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	m := metrics.New()

	codec, err := auth.NewCodec(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	readiness := map[string]store.Check{"postgres": store.PostgresCheck(db, 2*time.Second)}

	registry, closeRegistry, err := openRevocations(rootCtx, cfg, codec, m, readiness)
	if err != nil {
		log.Error("revocation init failed", "err", err)
		os.Exit(1)
	}
	defer closeRegistry()

	m.TrackRegistrySize(func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := registry.Size(ctx)
		if err != nil {
			return -1
		}
		return float64(n)
	})
	go revocation.RunSweeper(rootCtx, registry, cfg.Revocation.SweepInterval, log, m)

	userSvc := users.NewService(users.NewPostgresRepo(db))

	sessions, err := auth.NewManager(codec, registry, userSvc)
	if err != nil {
		log.Error("session manager init failed", "err", err)
		os.Exit(1)
	}
	sessions.Metrics = m

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		Handlers:    httpapi.Handlers{Sessions: sessions, Users: userSvc, Audit: auditSvc},
		Guard:       rbac.Guard{Metrics: m, Audit: auditSvc},
		AuthMW:      auth.RequireAccessToken(sessions, userSvc),
		Metrics:     m,
		Readiness:   readiness,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "revocation_backend", cfg.Revocation.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// openRevocations builds the configured registry backend. The memory backend
// loses every revocation on restart.
func openRevocations(ctx context.Context, cfg config.Config, codec *auth.Codec, m *metrics.Metrics, readiness map[string]store.Check) (revocation.Registry, func(), error) {
	if cfg.Revocation.Backend == config.RevocationBackendRedis {
		rdb, err := store.OpenRedis(ctx, store.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
		if err != nil {
			return nil, nil, err
		}
		readiness["redis"] = store.RedisCheck(rdb, time.Second)
		reg := revocation.NewRedis(rdb, codec.PeekExpiry)
		reg.Metrics = m
		return reg, func() { _ = rdb.Close() }, nil
	}

	reg := revocation.NewMemory(codec.PeekExpiry)
	reg.Metrics = m
	return reg, func() {}, nil
}
