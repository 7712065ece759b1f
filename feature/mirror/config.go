package mirror

import (
	"time"

	"calendar-mirror/core/reconcile"
)

const (
	SourceExchange = "exchange"
	SourceICS      = "ics"
)

// Config holds configuration for reconciliation passes.
type Config struct {
	// HorizonDays is the number of days ahead to mirror.
	HorizonDays int `mapstructure:"horizon_days" default:"60"`
	// DryRun plans without mutating the mirror.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// ToleranceSeconds is the start/end drift still considered equal.
	ToleranceSeconds int `mapstructure:"tolerance_seconds" default:"60"`
	// DescriptionMaxLen caps descriptions written to the mirror.
	DescriptionMaxLen int `mapstructure:"description_max_len" default:"10000"`
	// Timezone is used for timed events and display.
	Timezone string `mapstructure:"timezone" default:"Europe/Paris"`
	// Source selects the source calendar (exchange, ics).
	Source string `mapstructure:"source" default:"exchange"`
	// FailOnDuplicateRefs aborts a pass when mirror events share a source reference.
	FailOnDuplicateRefs bool `mapstructure:"fail_on_duplicate_refs" default:"false"`
	// Schedule is the cron expression used by the serve command.
	Schedule string `mapstructure:"schedule" default:"@every 15m"`
}

// IsValidSource checks if the configured source is supported.
func (c Config) IsValidSource() bool {
	switch c.Source {
	case SourceExchange, SourceICS:
		return true
	default:
		return false
	}
}

// Options converts the configuration into engine options.
func (c Config) Options() reconcile.Options {
	return reconcile.Options{
		HorizonDays:         c.HorizonDays,
		DryRun:              c.DryRun,
		Tolerance:           time.Duration(c.ToleranceSeconds) * time.Second,
		DescriptionMaxLen:   c.DescriptionMaxLen,
		Timezone:            c.Timezone,
		FailOnDuplicateRefs: c.FailOnDuplicateRefs,
	}
}
