package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"calendar-mirror/core/database"
	"calendar-mirror/core/logger"
	"calendar-mirror/core/reconcile"
	"calendar-mirror/core/server"
	"calendar-mirror/core/storage"
	"calendar-mirror/feature/exchange"
	"calendar-mirror/feature/gcal"
	"calendar-mirror/feature/health"
	"calendar-mirror/feature/ics"
	"calendar-mirror/feature/metrics"
	"calendar-mirror/feature/mirror"
	"calendar-mirror/feature/notify"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sync holds the reconciliation settings.
	Sync mirror.Config `mapstructure:"sync"`
	// Exchange holds the Exchange source settings.
	Exchange exchange.Config `mapstructure:"exchange"`
	// ICS holds the ICS feed source settings.
	ICS ics.Config `mapstructure:"ics"`
	// Google holds the Google Calendar mirror settings.
	Google gcal.Config `mapstructure:"google"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run history.
	Database database.Config `mapstructure:"database"`
	// Health holds configuration for health pings.
	Health health.Config `mapstructure:"health"`
	// Notify holds configuration for failure notifications.
	Notify notify.Config `mapstructure:"notify"`
	// Metrics holds configuration for the prometheus endpoint.
	Metrics metrics.Config `mapstructure:"metrics"`
}

// legacyEnv maps keys to the variable names used by earlier deployments.
// The structured name (e.g. SYNC_HORIZON_DAYS) always wins.
var legacyEnv = map[string]string{
	"sync.horizon_days": "DAYS_AHEAD",
	"sync.timezone":     "TIMEZONE",
	"health.url":        "HEALTHCHECK_URL",
	"health.verify_ssl": "VERIFY_SSL",
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, envName(key), legacy)
	}

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrConfiguration, err)
	}

	return &config, nil
}

// Validate reports every missing or invalid setting needed for a pass.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Sync.HorizonDays <= 0 {
		result = multierror.Append(result, fmt.Errorf("SYNC_HORIZON_DAYS must be positive, got %d", c.Sync.HorizonDays))
	}
	if c.Sync.ToleranceSeconds < 0 {
		result = multierror.Append(result, fmt.Errorf("SYNC_TOLERANCE_SECONDS cannot be negative"))
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		result = multierror.Append(result, fmt.Errorf("SYNC_TIMEZONE %q is not a known timezone", c.Sync.Timezone))
	}

	switch c.Sync.Source {
	case mirror.SourceExchange:
		if c.Exchange.URL == "" {
			result = multierror.Append(result, fmt.Errorf("EXCHANGE_URL is required"))
		}
		if c.Exchange.Username == "" {
			result = multierror.Append(result, fmt.Errorf("EXCHANGE_USERNAME is required"))
		}
		if c.Exchange.Password == "" {
			result = multierror.Append(result, fmt.Errorf("EXCHANGE_PASSWORD is required"))
		}
	case mirror.SourceICS:
		if c.ICS.URL == "" {
			result = multierror.Append(result, fmt.Errorf("ICS_URL is required"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("SYNC_SOURCE %q is not supported (exchange, ics)", c.Sync.Source))
	}

	if c.Google.CalendarID == "" {
		result = multierror.Append(result, fmt.Errorf("GOOGLE_CALENDAR_ID is required"))
	}
	if c.Google.ServiceAccountFile == "" && c.Google.CredentialsFile == "" {
		result = multierror.Append(result, fmt.Errorf("GOOGLE_CREDENTIALS_FILE or GOOGLE_SERVICE_ACCOUNT_FILE is required"))
	}

	if c.Database.Enabled && !c.Database.IsValidDriver() {
		result = multierror.Append(result, fmt.Errorf("DATABASE_DRIVER %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		result = multierror.Append(result, fmt.Errorf("STORAGE_BUCKET is required when archiving is enabled"))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", reconcile.ErrConfiguration, err)
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
