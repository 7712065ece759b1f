// Package metrics exposes pass outcomes in the prometheus text format on GET /metrics.
package metrics
