package checks

import (
	"context"
	"regexp"
	"testing"

	"calendar-mirror/core/database"
	"calendar-mirror/feature/history"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckHistorySchema_NilDB(t *testing.T) {
	report, err := CheckHistorySchema(nil)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckHistorySchema_Migrated(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, history.NewStore(db).Migrate(context.Background()))

	report, err := CheckHistorySchema(db)
	require.NoError(t, err)
	assert.True(t, report.Matched, "missing=%v mismatches=%v", report.MissingColumns, report.TypeMismatches)
	assert.Empty(t, report.MissingColumns)
}

func TestCheckHistorySchema_MissingTable(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)

	report, err := CheckHistorySchema(db)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Contains(t, report.Errors[0], "does not exist")
}

func TestCheckHistorySchema_Drift(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("run_id", "varchar(36)", "YES", "UNI", nil, "")
	rows.AddRow("error", "varchar(255)", "YES", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `sync_runs`")).WillReturnRows(rows)

	report, err := CheckHistorySchema(db)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Contains(t, report.MissingColumns, "started_at")
	assert.Contains(t, report.MissingColumns, "delete_failed")
	assert.NotContains(t, report.MissingColumns, "run_id")
	assert.Equal(t, []string{"error: expected text, got varchar(255)"}, report.TypeMismatches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseGormTags(t *testing.T) {
	assert.Equal(t, "sprite_id", parseGormColumn("column:sprite_id;type:int"))
	assert.Equal(t, "int", parseGormType("column:sprite_id;type:int"))
	assert.Empty(t, parseGormColumn("size:36;uniqueIndex"))
}
