// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports development (console) and
// production (json) output and integrates with the Fiber web framework.
//
// # Correlation
//
// WithRunID tags entries with the id of a reconciliation pass, so every create,
// update and delete of one pass can be grouped. WithRayID does the same for HTTP
// requests, using the id set by the rayid middleware.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	runLog := logger.WithRunID(log, runID)
//	runLog.Info("Synchronization finished")
package logger
