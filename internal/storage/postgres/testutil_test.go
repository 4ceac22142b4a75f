package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"tokenscout/internal/domain"
	"tokenscout/internal/storage/migrations"
)

// setupTestDB creates a PostgreSQL container and applies migrations.
// Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgres(ctx, pool.Pool), "failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// testAlert builds a valid alert for one token at one creation timestamp.
func testAlert(token string, createdAt int64) *domain.Alert {
	return &domain.Alert{
		TokenAddress: token,
		TokenName:    "TEST",
		Network:      domain.NetworkEth,
		EntryPrice:   1.0,
		StopLossPrice: 0.85, StopLossPct: -15,
		TP1Price: 1.08, TP1Pct: 8,
		TP2Price: 1.15, TP2Pct: 15,
		TP3Price: 1.25, TP3Pct: 25,
		Score: domain.ScoreResult{
			BaseScore:     80,
			MomentumBonus: 10,
			Whale:         domain.WhaleAssessment{Pattern: domain.WhalePatternNormal, Concentration: domain.ConcentrationNormal},
			FinalScore:    90,
			Confidence:    85,
			Velocity:      12,
			PumpType:      domain.PumpNormal,
		},
		Snapshot: domain.PoolSnapshot{
			Network:      domain.NetworkEth,
			TokenAddress: token,
			TokenName:    "TEST",
			PriceUSD:     1.0,
			LiquidityUSD: 150_000,
			Volume24h:    600_000,
			Buys24h:      450, Sells24h: 550,
			AgeHours:   50,
			ObservedAt: createdAt,
		},
		Condition:    domain.ConditionBuy,
		HighestPrice: 1.0,
		LowestPrice:  1.0,
		CreatedAt:    createdAt,
	}
}
