package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLiteWithMigrations_SetsBusyTimeout(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taskchat.db")
	gdb, err := OpenSQLiteWithMigrations(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteWithMigrations failed: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("DB() failed: %v", err)
	}
	defer sqlDB.Close()

	var timeout int
	if err := sqlDB.QueryRow(`PRAGMA busy_timeout;`).Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout failed: %v", err)
	}
	if timeout < 5000 {
		t.Fatalf("expected busy_timeout >= 5000, got %d", timeout)
	}
}

func TestMigrateUp_CreatesTaskColumns(t *testing.T) {
	gdb, err := OpenSQLiteWithMigrations(filepath.Join(t.TempDir(), "taskchat.db"))
	if err != nil {
		t.Fatal(err)
	}

	for _, col := range []string{
		"task_id", "title", "description", "priority", "completed",
		"recurring", "recurring_interval", "due_date", "created_at",
	} {
		if !gdb.Migrator().HasColumn(&Task{}, col) {
			t.Fatalf("tasks table missing column %q", col)
		}
	}
	if !gdb.Migrator().HasTable(&Config{}) {
		t.Fatal("config table not created")
	}
}

func TestMigrateUp_RecordsSchemaVersion(t *testing.T) {
	gdb, err := OpenSQLiteWithMigrations(filepath.Join(t.TempDir(), "taskchat.db"))
	if err != nil {
		t.Fatal(err)
	}

	// Running migrations again must not conflict on the existing row.
	if err := MigrateUp(gdb); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}

	var row Config
	if err := gdb.Where("key = ?", "schema_version").Take(&row).Error; err != nil {
		t.Fatalf("schema_version row missing: %v", err)
	}
	if row.Value != schemaVersion {
		t.Fatalf("expected schema_version %q, got %q", schemaVersion, row.Value)
	}
}
