// Package database opens the run history database.
//
// It wraps GORM and selects the dialector from configuration: a local sqlite file under
// the XDG data directory by default, or a shared MySQL server.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Run history disabled", zap.Error(err))
//	}
package database
