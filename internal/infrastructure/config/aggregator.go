package config

import "time"

// AggregatorConfig holds multi-colony aggregation settings
type AggregatorConfig struct {
	// Maximum number of colonies computed at once
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=64"`

	// A cached summary is reused for targets within this distance of the
	// cached target time
	ReuseWindow time.Duration `mapstructure:"reuse_window"`

	// Extractors expiring within this threshold are reported as expiring soon
	ExpiringSoon time.Duration `mapstructure:"expiring_soon"`
}

// SimulationConfig holds the extractor yield model parameters
type SimulationConfig struct {
	DecayFactor float64 `mapstructure:"decay_factor" validate:"gte=0"`
	YieldFloor  int     `mapstructure:"yield_floor" validate:"gte=0"`
}
