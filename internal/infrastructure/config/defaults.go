package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "colonysim.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "colonysim"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "colonysim"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// ESI defaults
	if cfg.ESI.BaseURL == "" {
		cfg.ESI.BaseURL = "https://esi.evetech.net/latest"
	}
	if cfg.ESI.UserAgent == "" {
		cfg.ESI.UserAgent = "colonysim-go"
	}
	if cfg.ESI.Timeout == 0 {
		cfg.ESI.Timeout = 30 * time.Second
	}
	if cfg.ESI.SnapshotMaxAge == 0 {
		cfg.ESI.SnapshotMaxAge = 10 * time.Minute
	}
	if cfg.ESI.RateLimit.Requests == 0 {
		cfg.ESI.RateLimit.Requests = 10
	}
	if cfg.ESI.RateLimit.Burst == 0 {
		cfg.ESI.RateLimit.Burst = 20
	}
	if cfg.ESI.Retry.MaxAttempts == 0 {
		cfg.ESI.Retry.MaxAttempts = 3
	}
	if cfg.ESI.Retry.BackoffBase == 0 {
		cfg.ESI.Retry.BackoffBase = 1 * time.Second
	}
	if cfg.ESI.CircuitBreaker.MaxFailures == 0 {
		cfg.ESI.CircuitBreaker.MaxFailures = 5
	}
	if cfg.ESI.CircuitBreaker.Cooldown == 0 {
		cfg.ESI.CircuitBreaker.Cooldown = 30 * time.Second
	}

	// Aggregator defaults
	if cfg.Aggregator.Concurrency == 0 {
		cfg.Aggregator.Concurrency = 6
	}
	if cfg.Aggregator.ReuseWindow == 0 {
		cfg.Aggregator.ReuseWindow = time.Minute
	}
	if cfg.Aggregator.ExpiringSoon == 0 {
		cfg.Aggregator.ExpiringSoon = 24 * time.Hour
	}

	// Simulation defaults
	if cfg.Simulation.DecayFactor == 0 {
		cfg.Simulation.DecayFactor = 0.012
	}
	if cfg.Simulation.YieldFloor == 0 {
		cfg.Simulation.YieldFloor = 1
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "colonysim"
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/colonysim-daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/colonysim-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// HTTP defaults
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = "localhost:8089"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
