// Package main runs tracking standalone: it resumes open alerts, re-arms
// their horizon timers, fires any overdue samples and analyses, and keeps
// the continuous max/min fresh from the live price stream. Useful when the
// scanner runs elsewhere or is down.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/analysis"
	"tokenscout/internal/config"
	"tokenscout/internal/domain"
	"tokenscout/internal/marketdata"
	"tokenscout/internal/storage"
	chstore "tokenscout/internal/storage/clickhouse"
	"tokenscout/internal/storage/migrations"
	pgstore "tokenscout/internal/storage/postgres"
	"tokenscout/internal/tracking"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("tracker stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	alertStore := pgstore.NewAlertStore(pool)
	trackingStore := pgstore.NewTrackingStore(pool)
	analysisStore := pgstore.NewAnalysisStore(pool)

	var tickStore storage.TickStore
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouse(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		tickStore = chstore.NewTickStore(conn)
	}

	market := marketdata.NewClient(cfg.MarketDataURL,
		marketdata.WithTimeout(cfg.RequestTimeout),
		marketdata.WithRatePerMinute(cfg.RatePerMinute),
	)

	analyzer := analysis.New(alertStore, trackingStore, analysisStore)
	scheduler := tracking.NewScheduler(tracking.SchedulerOptions{
		Alerts:   alertStore,
		Points:   trackingStore,
		Prices:   market,
		Analyzer: analyzer,
	})
	if err := scheduler.Resume(ctx); err != nil {
		return fmt.Errorf("resume tracking: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Close()

	updater := tracking.NewUpdater(alertStore, trackingStore, tickStore)

	if cfg.PriceStreamURL != "" {
		if err := consumeStream(ctx, cfg, alertStore, updater); err != nil {
			return err
		}
	} else {
		log.Info().Msg("no price stream configured, horizon fires only")
		<-ctx.Done()
	}

	log.Info().Msg("shutting down")
	return nil
}

// consumeStream subscribes every open alert's pool and folds live ticks
// into the continuous tracking state until the context ends. The watch set
// follows the open-alert set as alerts close and new ones appear.
func consumeStream(ctx context.Context, cfg *config.Config, alerts storage.AlertStore, updater *tracking.Updater) error {
	stream, err := marketdata.NewStream(ctx, cfg.PriceStreamURL, nil)
	if err != nil {
		return fmt.Errorf("connect price stream: %w", err)
	}
	defer stream.Close()

	var mu sync.Mutex
	byPool := make(map[string]*domain.Alert)

	refresh := func() {
		open, err := alerts.GetOpen(ctx)
		if err != nil {
			log.Error().Err(err).Msg("load open alerts")
			return
		}

		next := make(map[string]*domain.Alert, len(open))
		for _, a := range open {
			next[string(a.Network)+":"+a.Snapshot.PoolAddress] = a
		}

		mu.Lock()
		for key, a := range byPool {
			if _, still := next[key]; !still {
				_ = stream.Unwatch(a.Network, a.Snapshot.PoolAddress)
			}
		}
		for key, a := range next {
			if _, had := byPool[key]; !had {
				if err := stream.Watch(a.Network, a.Snapshot.PoolAddress); err != nil {
					log.Warn().Err(err).Str("pool", a.Snapshot.PoolAddress).Msg("watch failed")
				}
			}
		}
		byPool = next
		mu.Unlock()
	}
	refresh()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()

	updater.Consume(ctx, stream.Updates(), func(network domain.Network, poolAddress string) *domain.Alert {
		mu.Lock()
		defer mu.Unlock()
		return byPool[string(network)+":"+poolAddress]
	})
	return nil
}
