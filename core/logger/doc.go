// Package logger provides slog construction helpers and attribute constructors.
//
// New builds a *slog.Logger from functional options:
//
//	log := logger.New(
//		logger.WithDevelopment("antiforgery"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log := logger.New(
//		logger.WithProduction("antiforgery"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
// WithDevelopment writes text at debug level; WithStaging and WithProduction write
// JSON at info level. WithContextValue and WithContextExtractors add request-scoped
// attributes to records logged through the *Context methods.
//
// Nop returns a discarding logger and is the default for every component that
// accepts a logger option.
//
// # Attributes
//
// Attribute helpers return an empty slog.Attr for nil or empty input, which slog
// drops, so call sites need no nil checks:
//
//	log.Warn("authenticity token mismatch",
//		logger.Component("csrf"),
//		logger.Action("articles#create"),
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.Error(err),
//	)
//
// Request forgery helpers (Strategy, Digest, SessionID) describe how a token was
// computed. SessionID logs only a short prefix of the identifier.
package logger
