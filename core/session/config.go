package session

import (
	"time"
)

// Config holds session manager configuration.
type Config struct {
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`           // idle timeout
	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"` // min time between activity updates
	StoreSize     int           `env:"SESSION_STORE_SIZE" envDefault:"10000"`  // MemoryStore capacity, 0 = unbounded
}

func DefaultConfig() Config {
	return Config{
		TTL:           24 * time.Hour,
		TouchInterval: 5 * time.Minute,
		StoreSize:     10000,
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Config)

func WithTTL(ttl time.Duration) Option {
	return func(c *Config) {
		if ttl > 0 {
			c.TTL = ttl
		}
	}
}

// WithTouchInterval sets the minimum time between session activity updates.
// Set to 0 to extend the expiration on every request.
func WithTouchInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.TouchInterval = interval
		}
	}
}

// WithConfig replaces the whole configuration, e.g. one loaded from the environment.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
