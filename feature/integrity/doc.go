// Package integrity provides readiness checks of the surrounding infrastructure.
//
// Unlike the mirror package, which reconciles calendars, this package validates
// what a pass depends on.
//
// # Checks Provided
//
//   - Credentials: the Google client secrets and cached token, or the service account key.
//   - Storage: the report archive bucket exists (supports ?fix=true to create it).
//   - Schema: the sync_runs table matches the run history model (columns, types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/credentials : Runs the credentials check.
package integrity
