// Package fetch turns an asynchronous producer into an observable resource
// with graceful degradation.
//
// A Resource keeps the last good value when a load fails and reports the
// failure message next to it, so callers can keep rendering stale data.
// It makes no assumption about authentication; a 401-class failure is
// handed to an optional handler, typically a session logout.
//
// Basic usage:
//
//	plans := fetch.New(listPlans,
//	    fetch.WithFallback([]Plan{}),
//	    fetch.WithUnauthorizedHandler(session.Logout),
//	)
//	_ = plans.Load(ctx)
//	snap := plans.Snapshot()
package fetch
