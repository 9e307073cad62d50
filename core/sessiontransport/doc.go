// Package sessiontransport moves sessions between HTTP requests and a session.Manager.
//
// Cookie stores Session.Token in a signed cookie (see core/cookie). Load always
// yields a usable session: a missing, tampered, unknown or expired cookie
// produces a new anonymous session populated with the client IP and
// User-Agent. Store persists the session and refreshes the cookie, or clears
// the cookie after Logout.
//
//	store := session.NewMemoryStore[Data](session.DefaultConfig())
//	mgr, _ := session.NewManager[Data](store)
//	cookies, _ := cookie.New([]string{secret})
//	transport := sessiontransport.NewCookie(mgr, cookies, "__session")
//
//	r.Use(middleware.Session[*router.Context, Data](transport))
//
// Cookie also implements GenerateDigest, which lets request forgery protection
// derive authenticity tokens from the per-session csrf id when no application
// secret is configured:
//
//	r.Use(middleware.CSRFWithConfig(middleware.CSRFConfig[*router.Context, Data]{
//		Group:  articles,
//		Action: "create",
//		Digest: transport,
//	}))
package sessiontransport
