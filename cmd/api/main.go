package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "isuumo/internal/adapters/http_server"
	natsad "isuumo/internal/adapters/nats"
	"isuumo/internal/adapters/observability"
	redisad "isuumo/internal/adapters/redis"
	"isuumo/internal/app"
	"isuumo/internal/catalog"
	"isuumo/internal/domain"
	"isuumo/internal/shared"
	mysqlrepo "isuumo/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	cat, err := catalog.Load(cfg.ChairCatalogPath, cfg.EstateCatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("search conditions invalid")
	}

	// db
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN, mysqlrepo.PoolOptions{
		MaxOpenConns:    cfg.MySQLMaxOpenConns,
		MaxIdleConns:    cfg.MySQLMaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("database connection ok")

	events, closeEvents := openEvents(ctx, cfg)
	defer closeEvents()

	// deps
	repo := mysqlrepo.New(db)
	q := app.NewQueryService(repo, repo, cat)
	c := app.NewCommandService(repo, repo, events)

	// http
	srv := server.New(cfg.RequestTimeout())
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// openEvents picks the post-commit event backend. A broker that cannot be reached disables events
// rather than the API.
func openEvents(ctx context.Context, cfg shared.Config) (domain.EventPublisher, func()) {
	switch cfg.EventsBackend {
	case "redis":
		p := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := p.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; events disabled")
			_ = p.Close()
			return nil, func() {}
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("publishing events to redis")
		return p, func() { _ = p.Close() }
	case "nats":
		p, err := natsad.NewPublisher(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATSURL).Msg("nats unreachable; events disabled")
			return nil, func() {}
		}
		log.Info().Str("url", cfg.NATSURL).Msg("publishing events to nats")
		return p, p.Close
	default:
		return nil, func() {}
	}
}
