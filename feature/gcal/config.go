package gcal

// Config holds configuration for the Google Calendar mirror.
type Config struct {
	// CalendarID is the mirror calendar (an address or "primary").
	CalendarID string `mapstructure:"calendar_id" default:"primary"`
	// CredentialsFile is the OAuth client secrets file downloaded from the Cloud console.
	CredentialsFile string `mapstructure:"credentials_file" default:"credentials.json"`
	// TokenFile caches the user token. Empty means the XDG data directory.
	TokenFile string `mapstructure:"token_file" default:""`
	// ServiceAccountFile switches to service account authentication when set.
	ServiceAccountFile string `mapstructure:"service_account_file" default:""`
	// Impersonate is the user a service account acts as (domain-wide delegation).
	Impersonate string `mapstructure:"impersonate" default:""`
	// MetadataKey is the private extended property holding the source reference.
	MetadataKey string `mapstructure:"metadata_key" default:"exchange_uid"`
	// MaxRetries bounds retries of rate-limited or failing calls.
	MaxRetries int `mapstructure:"max_retries" default:"5"`
	// CallbackPort is the local port of the interactive consent flow.
	CallbackPort int `mapstructure:"callback_port" default:"8085"`
}
