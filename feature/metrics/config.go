package metrics

// Config holds configuration for the prometheus endpoint.
type Config struct {
	// Enabled exposes /metrics in serve mode.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"calendar_mirror"`
}
