package simple

import (
	"github.com/dmitrymomot/antiforgery/core/cookie"
	"github.com/dmitrymomot/antiforgery/core/forgery"
	"github.com/dmitrymomot/antiforgery/core/server"
	"github.com/dmitrymomot/antiforgery/core/session"
	"github.com/dmitrymomot/antiforgery/core/sessiontransport"
	"github.com/dmitrymomot/antiforgery/integration/database/redis"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the environment configuration of an App.
type Config struct {
	Cookie        cookie.Config
	Session       session.Config
	SessionCookie sessiontransport.CookieConfig
	CSRF          forgery.Config
	Server        server.Config
	Redis         redis.Config
	RedisSessions redis.SessionStoreConfig

	AppName        string `env:"APP_NAME" envDefault:"antiforgery"`
	Env            string `env:"APP_ENV" envDefault:"development"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`
	MetricsPath    string `env:"METRICS_PATH" envDefault:"/metrics"`
}
