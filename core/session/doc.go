// Package session provides generic server-side sessions.
//
// A Session[Data] carries a stable ID, a rotating Token (the value handed to
// the client), the authenticated user, application Data and the csrf id used
// by request forgery protection. Sessions are values; mutate a copy and hand
// it back to Manager.Store, which persists it only when something changed.
//
//	store := session.NewMemoryStore[Cart](session.DefaultConfig())
//	mgr, err := session.NewManager[Cart](store,
//		session.WithTTL(24*time.Hour),
//		session.WithTouchInterval(5*time.Minute),
//	)
//
//	sess, err := mgr.GetByToken(ctx, token)
//	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
//		sess, err = mgr.New(session.NewSessionParams{IP: ip, UserAgent: ua})
//	}
//	sess.Data.Items++
//	sess.SetData(sess.Data)
//	err = mgr.Store(ctx, sess)
//
// Authenticate rotates the token and clears the csrf id. Logout marks the
// session deleted; Store then removes it and returns ErrNotAuthenticated so the
// transport can clear the cookie.
//
// Store is the persistence contract. MemoryStore is a bounded LRU suitable for
// single-instance deployments and tests; the redis integration package provides
// a shared store.
package session
