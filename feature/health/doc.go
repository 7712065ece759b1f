// Package health pings an external check URL when a pass starts, succeeds or fails.
//
// The protocol follows healthchecks.io: GET <url>/start, POST <url> with a summary
// on success and POST <url>/fail with the error on failure.
package health
