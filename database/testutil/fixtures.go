package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"
)

// LoadFixture inserts rows into table. Each map is one row.
func LoadFixture(db *gorm.DB, table string, data []map[string]interface{}) error {
	for _, row := range data {
		if err := db.Table(table).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert fixture row into %s: %w", table, err)
		}
	}
	return nil
}

// MustLoadFixture loads test data and fails the test on error.
func MustLoadFixture(t testing.TB, db *gorm.DB, table string, data []map[string]interface{}) {
	t.Helper()
	if err := LoadFixture(db, table, data); err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
}

func quote(table string) string {
	return `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
}

// TruncateTable removes all rows from a table.
func TruncateTable(db *gorm.DB, table string) error {
	return db.Exec("DELETE FROM " + quote(table)).Error
}

// TruncateAllTables removes all rows from all tables in the database.
func TruncateAllTables(db *gorm.DB) error {
	tables, err := GetTableNames(db)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := TruncateTable(db, table); err != nil {
			return err
		}
	}
	return nil
}

// TableExists checks if a table exists in the database.
func TableExists(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}

// GetTableNames returns all non-system tables in name order.
func GetTableNames(db *gorm.DB) ([]string, error) {
	var tables []string
	err := db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&tables).Error
	return tables, err
}

// GetColumnNames returns the columns of table in declaration order.
func GetColumnNames(db *gorm.DB, table string) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for _, ct := range types {
		names = append(names, ct.Name())
	}
	return names, nil
}

// Schema returns the CREATE statements of every table and index, sorted by
// name, for comparing schema state between databases.
func Schema(db *gorm.DB) ([]string, error) {
	var stmts []string
	err := db.Raw("SELECT sql FROM sqlite_master WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' ORDER BY type, name").
		Scan(&stmts).Error
	return stmts, err
}

// CountRows returns the number of rows in a table.
func CountRows(db *gorm.DB, table string) (int64, error) {
	var count int64
	err := db.Table(table).Count(&count).Error
	return count, err
}

// AssertTableEmpty fails the test if the table is not empty.
func AssertTableEmpty(t testing.TB, db *gorm.DB, table string) {
	t.Helper()
	AssertRowCount(t, db, table, 0)
}

// AssertRowCount fails the test if the table doesn't have the expected row count.
func AssertRowCount(t testing.TB, db *gorm.DB, table string, expected int64) {
	t.Helper()
	count, err := CountRows(db, table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s row count = %d, want %d", table, count, expected)
	}
}
