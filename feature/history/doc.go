// Package history keeps a ledger of reconciliation passes in the database
// (status, counts, failing phase) and serves it under /runs.
package history
