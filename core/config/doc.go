// Package config provides configuration management for calendar-mirror.
//
// Settings come from environment variables, optionally loaded from a .env file in the
// working directory. Defaults live in the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections, each mapped to an environment prefix:
//   - Sync (SYNC_*): horizon, dry-run, tolerance, timezone, source selection, schedule
//   - Exchange (EXCHANGE_*): EWS endpoint and credentials
//   - ICS (ICS_*): published feed URL
//   - Google (GOOGLE_*): mirror calendar id and credential files
//   - Server, Storage, Database, Log, Health, Notify
//
// Variables of earlier deployments (DAYS_AHEAD, TIMEZONE, HEALTHCHECK_URL, VERIFY_SSL)
// are still honored.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
