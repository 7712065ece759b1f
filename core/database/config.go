package database

// Config holds configuration for the run history database.
type Config struct {
	// Enabled turns run history on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the sqlite file. Empty means the XDG data directory.
	Path string `mapstructure:"path" default:""`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name.
	Name string `mapstructure:"name" default:"calendar_mirror"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// IsValidDriver checks if the configured driver is supported.
func (c Config) IsValidDriver() bool {
	switch c.Driver {
	case DriverSQLite, DriverMySQL:
		return true
	default:
		return false
	}
}
