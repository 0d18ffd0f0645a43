package config

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Path of the metrics endpoint on the status HTTP server
	Path string `mapstructure:"path"`
}
