// Package main runs the scan loop: poll candidate pools, score, filter,
// and hand survivors to the emission engine. Tracking, outcome analysis and
// notification run in-process.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/analysis"
	"tokenscout/internal/config"
	"tokenscout/internal/decision"
	"tokenscout/internal/domain"
	"tokenscout/internal/engine"
	"tokenscout/internal/filter"
	"tokenscout/internal/marketdata"
	"tokenscout/internal/notify"
	"tokenscout/internal/observability"
	"tokenscout/internal/scoring"
	"tokenscout/internal/security"
	"tokenscout/internal/storage"
	chstore "tokenscout/internal/storage/clickhouse"
	"tokenscout/internal/storage/migrations"
	pgstore "tokenscout/internal/storage/postgres"
	"tokenscout/internal/tracking"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// .env before config so env overrides see the file's values.
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

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
		log.Fatal().Err(err).Msg("scanner stopped")
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
	} else {
		log.Warn().Msg("no clickhouse dsn, tick timeseries disabled")
	}

	market := marketdata.NewClient(cfg.MarketDataURL,
		marketdata.WithTimeout(cfg.RequestTimeout),
		marketdata.WithRatePerMinute(cfg.RatePerMinute),
	)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		notifier = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	} else {
		log.Warn().Msg("telegram not configured, alerts logged only")
	}

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

	emitter := engine.New(engine.Options{
		Alerts:      alertStore,
		Registrar:   scheduler,
		Notifier:    notifier,
		Security:    security.NewClient(security.DefaultBaseURL),
		Gate:        decision.NewGate(cfg.ReAlert),
		Classifier:  decision.NewClassifier(),
		Networks:    cfg.NetworkTable(),
		SecurityCfg: cfg.Security,
		Watchlist:   cfg.InWatchlist,
	})

	networks := cfg.NetworkTable()
	scorer := scoring.NewScorer(networks)
	screen := filter.NewPipeline(networks, cfg.InWatchlist)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	log.Info().
		Str("interval", cfg.ScanInterval.String()).
		Int("networks", len(cfg.ScanNetworks)).
		Msg("scanner started")

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()

	scanCycle(ctx, cfg, market, scorer, screen, emitter, updater, alertStore)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
			scanCycle(ctx, cfg, market, scorer, screen, emitter, updater, alertStore)
		}
	}
}

func scanCycle(
	ctx context.Context,
	cfg *config.Config,
	market *marketdata.Client,
	scorer *scoring.Scorer,
	screen *filter.Pipeline,
	emitter *engine.Engine,
	updater *tracking.Updater,
	alerts storage.AlertStore,
) {
	started := time.Now()
	seen := make(map[string]*domain.PoolSnapshot)
	failed := false

	for _, network := range cfg.ScanNetworks {
		if ctx.Err() != nil {
			return
		}

		pools, err := market.GetCandidatePools(ctx, network)
		if err != nil {
			log.Error().Err(err).Str("network", string(network)).Msg("candidate poll failed")
			failed = true
			continue
		}

		for _, s := range pools {
			seen[string(s.Network)+":"+s.PoolAddress] = s
			processCandidate(ctx, s, scorer, screen, emitter)
		}

		time.Sleep(cfg.NetworkPause)
	}

	updateOpenAlerts(ctx, alerts, updater, seen)

	status := "ok"
	if failed {
		status = "partial"
	} else {
		observability.DefaultMetrics.LastSuccessfulScan.Set(float64(time.Now().Unix()))
	}
	observability.RecordScanCycle(status, time.Since(started).Seconds())
	log.Info().
		Str("status", status).
		Int("pools", len(seen)).
		Dur("took", time.Since(started)).
		Msg("scan cycle done")
}

func processCandidate(ctx context.Context, s *domain.PoolSnapshot, scorer *scoring.Scorer, screen *filter.Pipeline, emitter *engine.Engine) {
	network := string(s.Network)
	score := scorer.Score(s)
	observability.RecordCandidateScored(network)

	if res := screen.Screen(s, &score); !res.Accepted {
		recordRejections(network, res)
		return
	}
	if res := screen.Confirm(s, &score); !res.Accepted {
		recordRejections(network, res)
		return
	}

	em, err := emitter.Process(ctx, s, score)
	if err != nil {
		log.Error().Err(err).Str("token", s.TokenAddress).Msg("emission failed")
		return
	}
	switch em.Outcome {
	case engine.OutcomeEmitted:
		kind := "first"
		if em.Alert.IsReAlert {
			kind = "re-alert"
		}
		observability.RecordAlertEmitted(network, kind)
	case engine.OutcomeSuppressed:
		observability.RecordSuppressed(network)
	case engine.OutcomeVetoed:
		observability.RecordSecurityVeto(network)
		log.Info().Str("token", s.TokenAddress).Str("reason", em.Reason).Msg("security veto")
	}
}

func recordRejections(network string, res *filter.Result) {
	for _, name := range res.FailedChecks() {
		observability.RecordCandidateFiltered(network, name)
	}
}

// updateOpenAlerts folds this cycle's snapshots into any open alert whose
// pool showed up in the poll.
func updateOpenAlerts(ctx context.Context, alerts storage.AlertStore, updater *tracking.Updater, seen map[string]*domain.PoolSnapshot) {
	open, err := alerts.GetOpen(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load open alerts")
		return
	}
	observability.DefaultMetrics.TrackedAlertsOpen.Set(float64(len(open)))

	for _, a := range open {
		s, ok := seen[string(a.Network)+":"+a.Snapshot.PoolAddress]
		if !ok {
			continue
		}
		if err := updater.Observe(ctx, a, s); err != nil {
			log.Error().Err(err).Int64("alert_id", a.ID).Msg("continuous update failed")
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
