// Package gcal is the Google Calendar mirror.
//
// Each mirrored event carries the source id in a private extended property.
// Listing expands recurring events into instances. Rate-limited and transient
// failures are retried with exponential backoff. Credentials come from a service
// account or from a user token cached under the XDG data directory.
package gcal
