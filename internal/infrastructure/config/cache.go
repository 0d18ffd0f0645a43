package config

import "time"

// CacheConfig selects where colony digests are kept between runs
type CacheConfig struct {
	// Backend: "memory" or "redis"
	Backend string `mapstructure:"backend" validate:"required,oneof=memory redis"`

	// Redis connection (used when backend is "redis")
	Addr     string `mapstructure:"addr" validate:"required_if=Backend redis"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`

	// Digest expiry, zero keeps digests until replaced
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}
