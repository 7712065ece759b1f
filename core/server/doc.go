// Package server holds the HTTP server configuration.
//
// The serve command exposes health, metrics, run history and a sync trigger on the
// configured port. Trigger routes are protected by the API key.
package server
