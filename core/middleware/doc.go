// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - Auth: API key validation protecting the sync trigger.
//   - RayID: assigns every request a unique id, stored in the context and echoed in the
//     X-Ray-ID response header for tracing.
package middleware
