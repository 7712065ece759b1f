package checks

import (
	"fmt"
	"reflect"
	"strings"

	"calendar-mirror/core/database"
	"calendar-mirror/feature/history"

	"gorm.io/gorm"
)

// SchemaReport is the result of a run history schema check.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Errors         []string `json:"errors"`
}

// CheckHistorySchema compares the sync_runs table with the SyncRun model.
func CheckHistorySchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	model := history.SyncRun{}
	report := &SchemaReport{
		Table:          model.TableName(),
		Matched:        true,
		MissingColumns: []string{},
		TypeMismatches: []string{},
	}

	actualCols, err := database.GetTableColumns(db, report.Table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", report.Table, err))
		report.Matched = false
		return report, nil
	}
	if len(actualCols) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("Table %s does not exist", report.Table))
		report.Matched = false
		return report, nil
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	val := reflect.TypeOf(model)
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		gormTag := field.Tag.Get("gorm")
		if gormTag == "-" {
			continue
		}

		colName := parseGormColumn(gormTag)
		if colName == "" {
			colName = db.NamingStrategy.ColumnName(report.Table, field.Name)
		}

		actCol, exists := actualMap[colName]
		if !exists {
			report.MissingColumns = append(report.MissingColumns, colName)
			report.Matched = false
			continue
		}

		// Only columns with an explicit type are compared, loosely
		if expType := strings.ToLower(parseGormType(gormTag)); expType != "" && !strings.Contains(actCol.Type, expType) {
			report.TypeMismatches = append(report.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
			report.Matched = false
		}
	}
	return report, nil
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	return tagValue(tag, "column:")
}

func parseGormType(tag string) string {
	return tagValue(tag, "type:")
}

func tagValue(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
