package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// Unix socket path for the gRPC service
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Interval of the background refresh of every registered character,
	// zero disables it
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// HTTPConfig holds the status HTTP server configuration
type HTTPConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Address     string   `mapstructure:"address" validate:"required_if=Enabled true"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}
