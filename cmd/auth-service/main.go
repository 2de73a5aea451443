package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/bearer-auth/internal/cache"
	"github.com/pribylovaa/bearer-auth/internal/config"
	apihttp "github.com/pribylovaa/bearer-auth/internal/http"
	"github.com/pribylovaa/bearer-auth/internal/http/handlers"
	"github.com/pribylovaa/bearer-auth/internal/interceptors"
	"github.com/pribylovaa/bearer-auth/internal/metrics"
	"github.com/pribylovaa/bearer-auth/internal/service"
	"github.com/pribylovaa/bearer-auth/internal/storage"
	"github.com/pribylovaa/bearer-auth/internal/storage/postgres"
	"github.com/pribylovaa/bearer-auth/internal/token"
	tokengrpc "github.com/pribylovaa/bearer-auth/internal/transport/grpc"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const userCachePrefix = "auth:user:"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application",
		slog.String("env", cfg.Env),
		slog.String("project", cfg.Project.Name),
		slog.String("version", cfg.Project.Version),
	)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	pg, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Info("postgres_connected")

	if !cfg.DB.SkipMigrations {
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		log.Info("migrations_applied")
	}

	// Кэш пользователей поверх Postgres (опционально).
	var users storage.UserStorage = pg
	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.RedisURL, userCachePrefix)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		users = cache.NewUsers(pg, rc, cfg.Redis.UserCacheTTL)
		log.Info("redis_connected", slog.Duration("user_cache_ttl", cfg.Redis.UserCacheTTL))
	}

	codec, err := token.New(cfg.Auth.JWTSecret, cfg.Auth.Algorithm)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	svc := service.New(users, codec, cfg.Auth, service.WithMetrics(m))
	log.Info("service_initialized", slog.String("alg", codec.Algorithm()))

	created, err := svc.EnsureSuperuser(ctx, cfg.Auth.FirstSuperuserEmail, cfg.Auth.FirstSuperuserPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("superuser_bootstrapped")
	}

	var ready atomic.Bool

	// HTTP: публичный API, пробы и метрики.
	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: apihttp.NewRouter(svc, apihttp.Options{
			Logger:      log,
			Timeout:     cfg.Timeouts.Service,
			BasePath:    cfg.HTTP.BasePath,
			CORSOrigins: cfg.HTTP.Origins(),
			Project: handlers.ProjectInfo{
				Name:    cfg.Project.Name,
				Version: cfg.Project.Version,
			},
			Ready:   readiness(&ready, pg, 2*time.Second),
			Metrics: promhttp.Handler(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpc_prometheus.EnableHandlingTimeHistogram()

	// gRPC-сервер и интерсепторы.
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(log),
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.WithTimeout(cfg.Timeouts.Service),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	tokengrpc.RegisterTokenServiceServer(grpcServer, tokengrpc.NewTokenServer(svc))

	// Рефлексия только в local/dev.
	if cfg.Env == envLocal || cfg.Env == envDev {
		reflection.Register(grpcServer)
	}
	grpc_prometheus.Register(grpcServer)

	grpcAddr := cfg.GRPC.Addr()
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return err
	}

	serveErrCh := make(chan error, 2)

	go func() {
		log.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}()

	go func() {
		log.Info("grpc_listen_start", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrCh <- err
		}
	}()

	// Сервис готов: health -> SERVING и readiness=1.
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(tokengrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	ready.Store(true)

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		log.Error("serve_failed", slog.String("err", serveErr.Error()))
	}

	// Переводим в NOT_SERVING и снимаем ready.
	hs.Shutdown()
	ready.Store(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc_stopped")
	case <-shutdownCtx.Done():
		log.Warn("grpc_force_stop")
		grpcServer.Stop()
	}

	return serveErr
}

var errNotReady = errors.New("service is not ready")

// pinger — зависимость, доступность которой входит в readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

// readiness готов, когда сервис поднят и БД отвечает на ping за timeout.
func readiness(flag *atomic.Bool, db pinger, timeout time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		if !flag.Load() {
			return errNotReady
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return db.Ping(ctx)
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
