package config

import "tokenscout/internal/domain"

// Band is an inclusive [Min, Max] USD range. Max == 0 means unbounded.
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	if v < b.Min {
		return false
	}
	if b.Max > 0 && v > b.Max {
		return false
	}
	return true
}

// Levels holds stop-loss and take-profit percents relative to entry.
// StopLossPct is negative; the TP percents ascend.
type Levels struct {
	StopLossPct float64 `yaml:"stop_loss_pct"`
	TP1Pct      float64 `yaml:"tp1_pct"`
	TP2Pct      float64 `yaml:"tp2_pct"`
	TP3Pct      float64 `yaml:"tp3_pct"`
}

// NetworkConfig consolidates every per-network heuristic constant used by
// scoring and filtering. New networks are added here, not in code.
type NetworkConfig struct {
	// Scoring
	ReputationBonus float64 `yaml:"reputation_bonus"`
	SweetSpot       Band    `yaml:"sweet_spot"`
	SweetSpotBonus  float64 `yaml:"sweet_spot_bonus"`

	// Filtering
	Liquidity   Band    `yaml:"liquidity"`
	MinVolume   float64 `yaml:"min_volume"`
	MinTxns     int     `yaml:"min_txns"`
	MinVelocity float64 `yaml:"min_velocity"`
	MinScore    float64 `yaml:"min_score"`

	// Alert levels
	Levels Levels `yaml:"levels"`

	// Hours after which an open alert is considered expired by the tracker.
	TimeoutHours int `yaml:"timeout_hours"`
}

// defaultLevels applies to networks without dedicated SL/TP tuning.
var defaultLevels = Levels{StopLossPct: -10, TP1Pct: 5, TP2Pct: 10, TP3Pct: 15}

// DefaultNetworks returns the built-in heuristic table. A YAML config file
// overrides individual entries; networks absent from both fall back to the
// "unknown" entry.
func DefaultNetworks() map[domain.Network]NetworkConfig {
	return map[domain.Network]NetworkConfig{
		domain.NetworkEth: {
			ReputationBonus: 35,
			SweetSpot:       Band{Min: 100_000, Max: 200_000},
			SweetSpotBonus:  15,
			Liquidity:       Band{Min: 50_000, Max: 5_000_000},
			MinVolume:       50_000,
			MinTxns:         150,
			MinVelocity:     3,
			MinScore:        70,
			Levels:          Levels{StopLossPct: -15, TP1Pct: 8, TP2Pct: 15, TP3Pct: 25},
			TimeoutHours:    24,
		},
		domain.NetworkSolana: {
			ReputationBonus: 32,
			SweetSpot:       Band{Min: 100_000, Max: 200_000},
			SweetSpotBonus:  12,
			Liquidity:       Band{Min: 30_000, Max: 2_000_000},
			MinVolume:       30_000,
			MinTxns:         100,
			MinVelocity:     5,
			MinScore:        65,
			Levels:          Levels{StopLossPct: -12, TP1Pct: 7, TP2Pct: 12, TP3Pct: 20},
			TimeoutHours:    24,
		},
		domain.NetworkBsc: {
			ReputationBonus: 25,
			SweetSpot:       Band{Min: 500_000, Max: 5_000_000},
			SweetSpotBonus:  10,
			Liquidity:       Band{Min: 40_000, Max: 5_000_000},
			MinVolume:       40_000,
			MinTxns:         120,
			MinVelocity:     3,
			MinScore:        70,
			Levels:          defaultLevels,
			TimeoutHours:    24,
		},
		domain.NetworkAvax: {
			ReputationBonus: 28,
			SweetSpot:       Band{Min: 100_000, Max: 500_000},
			SweetSpotBonus:  12,
			Liquidity:       Band{Min: 30_000, Max: 3_000_000},
			MinVolume:       25_000,
			MinTxns:         80,
			MinVelocity:     3,
			MinScore:        68,
			Levels:          defaultLevels,
			TimeoutHours:    24,
		},
		domain.NetworkPolygon: {
			ReputationBonus: 20,
			SweetSpot:       Band{Min: 50_000, Max: 300_000},
			SweetSpotBonus:  10,
			Liquidity:       Band{Min: 25_000, Max: 2_000_000},
			MinVolume:       20_000,
			MinTxns:         80,
			MinVelocity:     3,
			MinScore:        70,
			Levels:          defaultLevels,
			TimeoutHours:    24,
		},
		domain.NetworkBase: {
			ReputationBonus: 15,
			Liquidity:       Band{Min: 25_000, Max: 2_000_000},
			MinVolume:       20_000,
			MinTxns:         80,
			MinVelocity:     4,
			MinScore:        72,
			Levels:          defaultLevels,
			TimeoutHours:    24,
		},
		domain.NetworkArbitrum: {
			ReputationBonus: 5,
			Liquidity:       Band{Min: 25_000, Max: 2_000_000},
			MinVolume:       20_000,
			MinTxns:         80,
			MinVelocity:     4,
			MinScore:        75,
			Levels:          defaultLevels,
			TimeoutHours:    24,
		},
		domain.NetworkUnknown: {
			ReputationBonus: 10,
			Liquidity:       Band{Min: 50_000, Max: 1_000_000},
			MinVolume:       50_000,
			MinTxns:         150,
			MinVelocity:     5,
			MinScore:        80,
			Levels:          defaultLevels,
			TimeoutHours:    24,
		},
	}
}

// Networks wraps the per-network table with a safe lookup.
type Networks map[domain.Network]NetworkConfig

// For returns the config for a network, falling back to the unknown entry.
func (m Networks) For(network domain.Network) NetworkConfig {
	if cfg, ok := m[network]; ok {
		return cfg
	}
	return m[domain.NetworkUnknown]
}
