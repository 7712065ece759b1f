package exchange

// Config holds configuration for the Exchange Web Services source.
type Config struct {
	// URL is the EWS endpoint (e.g., https://mail.example.com/EWS/Exchange.asmx).
	URL string `mapstructure:"url" default:""`
	// Username is the login, usually DOMAIN\user or the UPN.
	Username string `mapstructure:"username" default:""`
	// Email is the mailbox whose calendar is read. Empty means the login's own mailbox.
	Email string `mapstructure:"email" default:""`
	// Password is the account password.
	Password string `mapstructure:"password" default:""`
	// Auth selects the HTTP authentication scheme (ntlm, basic).
	Auth string `mapstructure:"auth" default:"ntlm"`
	// TimeoutSeconds bounds every EWS request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
	// MaxBodyChars caps text bodies requested from the server. Zero means no cap.
	MaxBodyChars int `mapstructure:"max_body_chars" default:"10000"`
}
