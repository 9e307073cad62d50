// Package health provides liveness and readiness probe handlers.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "redis", Probe: redis.Healthcheck(client)},
//	))
//
// A probe is any func(context.Context) error. Readiness answers 503 on the
// first failing probe and logs which dependency failed.
package health
