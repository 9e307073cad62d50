// Package redis connects to redis and provides a redis-backed session store.
//
// Connect parses a redis:// or rediss:// URL, pings the server with exponential
// backoff and returns a ready client. Healthcheck wraps a ping for readiness probes.
//
//	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// SessionStore implements session.Store. Sessions are encoded with msgpack and
// stored under "<prefix>id:<uuid>" with a "<prefix>token:<token>" index; both
// keys expire with the session. With WithDigestKey the store also implements
// forgery.DigestGenerator, so CSRF tokens can be derived from session csrf ids
// without an application-wide secret:
//
//	store, err := redis.NewSessionStore[Data](client, redis.WithDigestKey(cfg.DigestKey))
//	mgr, err := session.NewManager[Data](store)
//	r.Use(middleware.CSRFWithConfig(middleware.CSRFConfig[*router.Context, Data]{
//		Group:  articles,
//		Action: "create",
//		Digest: store,
//	}))
//
// Errors are sentinels checked with errors.Is: ErrEmptyConnectionURL,
// ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrHealthcheckFailed,
// ErrNoDigestKey and the session package errors for lookups.
package redis
