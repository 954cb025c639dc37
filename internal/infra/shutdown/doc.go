// Package shutdown coordinates graceful process termination.
//
// Hooks registered with OnShutdown run once, in reverse registration
// order, when SIGINT/SIGTERM arrives, when Trigger is called, or when the
// caller's context ends. Each run is bounded by the handler timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(store.Close)
//	go repl.Run(ctx)
//	_ = h.Wait(ctx)
package shutdown
