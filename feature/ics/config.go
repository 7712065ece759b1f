package ics

// Config holds configuration for the published ICS feed source.
type Config struct {
	// URL is the address of the published calendar (.ics).
	URL string `mapstructure:"url" default:""`
	// TimeoutSeconds bounds the feed download.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
