package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Field string
	Type  string
}

// GetTableColumns retrieves the column definitions of a table.
// A missing table yields no columns.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == DriverSQLite {
		type sqliteColumn struct {
			Name string
			Type string
		}
		var rows []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range rows {
			columns = append(columns, ColumnInfo{Field: strings.ToLower(col.Name), Type: strings.ToLower(col.Type)})
		}
		return columns, nil
	}

	type mysqlColumn struct {
		Field string
		Type  string
	}
	var rows []mysqlColumn
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for _, col := range rows {
		columns = append(columns, ColumnInfo{Field: strings.ToLower(col.Field), Type: strings.ToLower(col.Type)})
	}
	return columns, nil
}

// MissingColumns returns the expected columns absent from the table.
func MissingColumns(db *gorm.DB, tableName string, expected []string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		present[col.Field] = struct{}{}
	}

	var missing []string
	for _, name := range expected {
		if _, ok := present[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
