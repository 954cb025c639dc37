// Package metric provides Prometheus metrics for Trainly clients.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry with session, identity and token store metrics
//   - collector.go: Scrape-time collector for the session state
//
// Metrics live in a private registry (never the global default) so that
// each runtime, and each test, owns its own counters. The CLI renders
// them in text exposition format; Handler serves them over HTTP.
package metric
