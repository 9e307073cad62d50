// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	return srv.Run(ctx, router)()
//
// Run returns a func() error so it plugs into errgroup-style supervisors. It
// serves until ctx is canceled and then shuts down within the configured
// timeout. TLS is enabled when both SERVER_TLS_CERT_FILE and
// SERVER_TLS_KEY_FILE are set; the minimum version is TLS 1.2.
package server
