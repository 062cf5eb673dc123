// Package observability provides structured logging and Prometheus metrics
// for the back-office API.
//
// This package implements:
//   - zap logger construction from configuration
//   - Prometheus collectors for sign-in, sign-up and token rejection outcomes
//   - HTTP request counters and latency histograms
//
// Collectors are registered on a dedicated registry so tests can build
// isolated instances.
package observability
