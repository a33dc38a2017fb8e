package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"isuumo/internal/adapters/observability"
	"isuumo/internal/app"
	"isuumo/internal/shared"
	mysqlrepo "isuumo/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	chairCSV := flag.String("chairs", cfg.ChairCSV, "chair CSV file (CHAIR_CSV)")
	estateCSV := flag.String("estates", cfg.EstateCSV, "estate CSV file (ESTATE_CSV)")
	skipHeader := flag.Bool("header", false, "first CSV line is a header")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := app.BatchOptions{
		BatchSize:        cfg.BatchSize,
		Workers:          cfg.Workers,
		BatchesPerSecond: cfg.BatchesPerSecond,
		SkipHeader:       *skipHeader,
	}
	log.Info().
		Int("workers", opts.Workers).
		Int("batch_size", opts.BatchSize).
		Float64("batches_per_second", opts.BatchesPerSecond).
		Msg("ingestor starting")

	if *chairCSV == "" && *estateCSV == "" {
		log.Fatal().Msg("nothing to load: set CHAIR_CSV and/or ESTATE_CSV")
	}

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN, mysqlrepo.PoolOptions{
		// one connection per worker plus one spare
		MaxOpenConns:    cfg.Workers + 1,
		MaxIdleConns:    cfg.Workers + 1,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	ing := app.NewIngestionService(repo, repo)

	failed := false
	load := func(kind, path string, fn func(context.Context, *os.File) (int, error)) {
		if path == "" {
			return
		}
		f, err := os.Open(path)
		if err != nil {
			log.Error().Err(err).Str("kind", kind).Str("path", path).Msg("open failed")
			failed = true
			return
		}
		defer f.Close()

		start := time.Now()
		n, err := fn(ctx, f)
		ev := log.Info()
		if err != nil {
			ev = log.Error().Err(err)
			failed = true
		}
		ev.Str("kind", kind).Str("path", path).Int("rows", n).Dur("took", time.Since(start)).Msg("load finished")
	}

	load("chair", *chairCSV, func(ctx context.Context, f *os.File) (int, error) { return ing.StreamChairs(ctx, f, opts) })
	load("estate", *estateCSV, func(ctx context.Context, f *os.File) (int, error) { return ing.StreamEstates(ctx, f, opts) })

	if failed {
		log.Error().Msg("ingestion completed with errors")
		os.Exit(1)
	}
	log.Info().Msg("ingestion completed")
}
