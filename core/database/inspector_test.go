package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE sync_runs (id INTEGER PRIMARY KEY, run_id TEXT, created INTEGER)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "sync_runs")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["run_id"])

	// PRAGMA table_info returns nothing for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE sync_runs (id INTEGER PRIMARY KEY, run_id TEXT)").Error)

	missing, err := MissingColumns(db, "sync_runs", []string{"id", "RUN_ID", "phase", "error"})
	require.NoError(t, err)
	assert.Equal(t, []string{"phase", "error"}, missing)
}
