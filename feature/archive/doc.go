// Package archive uploads the JSON report of every pass to an S3-compatible
// bucket and removes reports past the retention period.
package archive
