package storage

import "time"

// Config holds configuration for the report archive bucket.
type Config struct {
	// Enabled turns report archiving on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives run reports.
	Bucket string `mapstructure:"bucket" default:"calendar-mirror"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// Prefix is prepended to every report key.
	Prefix string `mapstructure:"prefix" default:"reports"`
	// RetentionDays removes reports older than this many days. Zero keeps everything.
	RetentionDays int `mapstructure:"retention_days" default:"90"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns the connection timeout, 30 seconds when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
