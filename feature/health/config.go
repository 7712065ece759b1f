package health

// Config holds configuration for run health pings.
type Config struct {
	// URL is the check URL. /start and /fail are appended for those signals.
	URL string `mapstructure:"url" default:""`
	// VerifySSL disables TLS verification when false.
	VerifySSL bool `mapstructure:"verify_ssl" default:"true"`
	// TimeoutSeconds bounds every ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// Enabled reports whether pings are configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
