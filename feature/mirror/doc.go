// Package mirror runs reconciliation passes.
//
// The Service builds the collaborators through a Factory, runs one pass with
// the configured options and notifies run hooks (history, archive, metrics,
// notifications, health pings). Concurrent triggers share the pass in flight.
// The Handler exposes POST /sync and GET /health.
package mirror
