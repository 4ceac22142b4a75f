// Package main prints the alert performance report for a time window and
// optionally exports the per-alert outcome rows as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/config"
	"tokenscout/internal/reporting"
	"tokenscout/internal/storage"
	chstore "tokenscout/internal/storage/clickhouse"
	"tokenscout/internal/storage/migrations"
	pgstore "tokenscout/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	days := flag.Int("days", 7, "Report window in days, ending now")
	csvPath := flag.String("csv", "", "Write per-alert outcomes CSV to this path")
	flag.Parse()

	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.PostgresDSN == "" {
		log.Fatal().Msg("postgres dsn not configured (TOKENSCOUT_POSTGRES_DSN)")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("postgres migrations")
	}

	var tickStore storage.TickStore
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouse(ctx, cfg.ClickhouseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("clickhouse migrations")
		}
		defer conn.Close()
		tickStore = chstore.NewTickStore(conn)
	}

	gen := reporting.NewGenerator(
		pgstore.NewAlertStore(pool),
		pgstore.NewAnalysisStore(pool),
		tickStore,
	)

	end := time.Now()
	start := end.Add(-time.Duration(*days) * 24 * time.Hour)
	report, err := gen.Generate(ctx, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		log.Fatal().Err(err).Msg("generate report")
	}

	reporting.RenderTables(os.Stdout, report)

	if *csvPath != "" {
		csv := reporting.RenderCSV(report.Outcomes)
		if err := os.WriteFile(*csvPath, []byte(csv), 0o644); err != nil {
			log.Fatal().Err(err).Str("path", *csvPath).Msg("write csv")
		}
		fmt.Printf("\nOutcomes CSV written to %s (%d rows)\n", *csvPath, len(report.Outcomes))
	}
}
