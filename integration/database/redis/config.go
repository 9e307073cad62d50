package redis

import "time"

// Config holds the redis connection settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	ScanBatchSize  int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
}

// SessionStoreConfig configures SessionStore.
type SessionStoreConfig struct {
	KeyPrefix string `env:"REDIS_SESSION_PREFIX" envDefault:"session:"`
	// DigestKey enables authenticity token digests of session csrf ids.
	DigestKey     string `env:"REDIS_CSRF_DIGEST_KEY"`
	ScanBatchSize int    `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
}

func DefaultSessionStoreConfig() SessionStoreConfig {
	return SessionStoreConfig{
		KeyPrefix:     "session:",
		ScanBatchSize: 1000,
	}
}
