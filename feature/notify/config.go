package notify

// Config holds configuration for failure notifications.
type Config struct {
	// Desktop sends notify-send notifications when a display is available.
	Desktop bool `mapstructure:"desktop" default:"false"`
	// WebhookURL receives a JSON notification when set.
	WebhookURL string `mapstructure:"webhook_url" default:""`
	// TimeoutSeconds bounds webhook calls.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
