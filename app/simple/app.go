package simple

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/antiforgery/core/config"
	"github.com/dmitrymomot/antiforgery/core/cookie"
	"github.com/dmitrymomot/antiforgery/core/forgery"
	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/health"
	"github.com/dmitrymomot/antiforgery/core/logger"
	"github.com/dmitrymomot/antiforgery/core/router"
	"github.com/dmitrymomot/antiforgery/core/server"
	"github.com/dmitrymomot/antiforgery/core/session"
	"github.com/dmitrymomot/antiforgery/core/sessiontransport"
	"github.com/dmitrymomot/antiforgery/integration/database/redis"
	"github.com/dmitrymomot/antiforgery/middleware"
)

const cleanupInterval = 10 * time.Minute

var ErrUnknownSessionBackend = errors.New("unknown session backend")

// SessionData is the application payload carried by every session.
type SessionData struct {
	Flash string `msgpack:"flash,omitempty"`
}

// App wires configuration, logging, sessions, forgery protection, metrics and
// the HTTP server into a ready router.
type App struct {
	config    Config
	logger    *slog.Logger
	router    router.Router[*router.Context]
	server    *server.Server
	cookie    *cookie.Manager
	sessions  *session.Manager[SessionData]
	transport *sessiontransport.Cookie[SessionData]
	digest    forgery.DigestGenerator
	protector *forgery.Protector
	registry  *prometheus.Registry
	redis     *goredis.Client
}

type AppOption func(*App) error

// NewApp loads Config from the environment and builds the App.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return New(ctx, cfg, opts...)
}

// New builds an App from cfg. Components passed as options replace the ones
// New would build.
func New(ctx context.Context, cfg Config, opts ...AppOption) (*App, error) {
	app := &App{config: cfg}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		log, err := newLogger(cfg)
		if err != nil {
			return nil, err
		}
		app.logger = log
	}

	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
	}

	if app.cookie == nil {
		cm, err := cookie.NewFromConfig(cfg.Cookie)
		if err != nil {
			return nil, err
		}
		app.cookie = cm
	}

	if app.sessions == nil {
		store, err := app.sessionStore(ctx)
		if err != nil {
			return nil, err
		}
		sm, err := session.NewManager[SessionData](store, session.WithConfig(cfg.Session))
		if err != nil {
			return nil, err
		}
		app.sessions = sm
	}

	app.transport = sessiontransport.NewCookieFromConfig(cfg.SessionCookie, app.sessions, app.cookie)
	if app.digest == nil {
		app.digest = app.transport
	}

	if app.protector == nil {
		metrics, err := forgery.NewMetrics(app.registry)
		if err != nil {
			return nil, err
		}
		p, err := forgery.NewFromConfig(cfg.CSRF,
			forgery.WithMetrics(metrics),
			forgery.WithLogger(app.logger),
		)
		if err != nil {
			return nil, err
		}
		app.protector = p
	}

	if app.router == nil {
		app.router = router.New[*router.Context](router.WithLogger[*router.Context](app.logger))
	}
	app.router.Use(
		middleware.RequestID[*router.Context](),
		middleware.LoggingWithLogger[*router.Context](app.logger),
		middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, SessionData]{
			Transport: app.transport,
			Logger:    app.logger,
			Skip: func(ctx *router.Context) bool {
				path := ctx.Request().URL.Path
				return strings.HasPrefix(path, "/health/") || (cfg.MetricsPath != "" && path == cfg.MetricsPath)
			},
		}),
	)

	var checks []health.Check
	if app.redis != nil {
		checks = append(checks, health.Check{Name: "redis", Probe: redis.Healthcheck(app.redis)})
	}
	app.router.Get("/health/live", health.Liveness[*router.Context])
	app.router.Get("/health/ready", health.Readiness[*router.Context](app.logger, checks...))
	if cfg.MetricsPath != "" {
		metrics := promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})
		app.router.Get(cfg.MetricsPath, func(ctx *router.Context) handler.Response {
			return func(w http.ResponseWriter, r *http.Request) error {
				metrics.ServeHTTP(w, r)
				return nil
			}
		})
	}

	if app.server == nil {
		s, err := server.NewFromConfig(cfg.Server, server.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.server = s
	}

	return app, nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store[SessionData], error) {
	switch a.config.SessionBackend {
	case "", BackendMemory:
		return session.NewMemoryStore[SessionData](a.config.Session), nil
	case BackendRedis:
		client, err := redis.Connect(ctx, a.config.Redis)
		if err != nil {
			return nil, err
		}
		store, err := redis.NewSessionStoreFromConfig[SessionData](client, a.config.RedisSessions)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		a.redis = client
		if a.config.RedisSessions.DigestKey != "" && a.digest == nil {
			a.digest = store
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSessionBackend, a.config.SessionBackend)
	}
}

func newLogger(cfg Config) (*slog.Logger, error) {
	var opts []logger.Option
	switch cfg.Env {
	case "production":
		opts = append(opts, logger.WithProduction(cfg.AppName))
	case "staging":
		opts = append(opts, logger.WithStaging(cfg.AppName))
	default:
		opts = append(opts, logger.WithDevelopment(cfg.AppName))
	}

	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	if strings.EqualFold(cfg.LogFormat, "json") {
		opts = append(opts, logger.WithJSONFormatter())
	}
	opts = append(opts, logger.WithContextExtractors(middleware.RequestIDExtractor))

	return logger.New(opts...), nil
}

func (a *App) Router() router.Router[*router.Context] { return a.router }
func (a *App) Logger() *slog.Logger                   { return a.logger }
func (a *App) Protector() *forgery.Protector          { return a.protector }
func (a *App) Sessions() *session.Manager[SessionData] {
	return a.sessions
}

// Group returns the named action group of the App protector.
func (a *App) Group(name string) *forgery.Group {
	return a.protector.Group(name)
}

// CSRF gates action of group using the App digest generator and logger.
func (a *App) CSRF(group *forgery.Group, action string) handler.Middleware[*router.Context] {
	return middleware.CSRFWithConfig(middleware.CSRFConfig[*router.Context, SessionData]{
		Group:  group,
		Action: action,
		Digest: a.digest,
		Logger: a.logger,
	})
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves the router until ctx is canceled, removing expired sessions
// periodically, and releases resources on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("failed to close app", logger.Error(err))
		}
	}()

	go a.cleanupSessions(ctx)

	return a.server.Run(ctx, a.router)()
}

func (a *App) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sessions.CleanupExpired(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "session cleanup failed", logger.Component("session"), logger.Error(err))
				continue
			}
			if n > 0 {
				a.logger.DebugContext(ctx, "expired sessions removed", logger.Component("session"), slog.Int64("count", n))
			}
		}
	}
}

// Close releases the redis connection, if any.
func (a *App) Close() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithRouter(router router.Router[*router.Context]) AppOption {
	return func(app *App) error {
		if router == nil {
			return errors.New("router cannot be nil")
		}
		app.router = router
		return nil
	}
}

func WithServer(server *server.Server) AppOption {
	return func(app *App) error {
		if server == nil {
			return errors.New("server cannot be nil")
		}
		app.server = server
		return nil
	}
}

func WithCookieManager(cookie *cookie.Manager) AppOption {
	return func(app *App) error {
		if cookie == nil {
			return errors.New("cookie manager cannot be nil")
		}
		app.cookie = cookie
		return nil
	}
}

func WithSessionManager(session *session.Manager[SessionData]) AppOption {
	return func(app *App) error {
		if session == nil {
			return errors.New("session manager cannot be nil")
		}
		app.sessions = session
		return nil
	}
}

// WithProtector replaces the protector built from Config.CSRF.
func WithProtector(p *forgery.Protector) AppOption {
	return func(app *App) error {
		if p == nil {
			return errors.New("protector cannot be nil")
		}
		app.protector = p
		return nil
	}
}

// WithRegistry registers metrics with reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) AppOption {
	return func(app *App) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		app.registry = reg
		return nil
	}
}
