package migrate_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/gudang-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestItemsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_items"), []string{
		"CREATE TABLE IF NOT EXISTS item_categories",
		"CREATE TABLE IF NOT EXISTS items",
		"CONSTRAINT chk_items_stock_non_negative CHECK (stock >= 0)",
		"FOREIGN KEY (category_id) REFERENCES item_categories(id) ON DELETE RESTRICT",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_items_code ON items (code)",
		"DROP TABLE IF EXISTS items",
	})
}

func TestOutgoingMigrationGuardsSerialAllocation(t *testing.T) {
	assertContains(t, readMigration(t, "create_outgoing_shipments"), []string{
		"CHECK (status IN ('pending', 'approved', 'rejected'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_outgoing_lines_serial_unit",
		"WHERE serial_unit_id IS NOT NULL",
		"FOREIGN KEY (shipment_id) REFERENCES outgoing_shipments(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS outgoing_shipment_lines",
	})
}

func TestIncomingMigrationKeepsSerialsUnique(t *testing.T) {
	assertContains(t, readMigration(t, "create_incoming_shipments"), []string{
		"CREATE TABLE IF NOT EXISTS serial_units",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_serial_units_serial_number",
		"FOREIGN KEY (incoming_line_id) REFERENCES incoming_shipment_lines(id) ON DELETE CASCADE",
	})
}

func TestValidateDirAcceptsRepositoryMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Item Barcode!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_item_barcode.sql") {
		t.Fatalf("unexpected path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestIsCommand(t *testing.T) {
	if !migrate.IsCommand("up") || !migrate.IsCommand("status") {
		t.Fatal("expected standard goose commands to be accepted")
	}
	if migrate.IsCommand("drop-everything") {
		t.Fatal("unexpected command accepted")
	}
}

func TestValidateDirRejectsDownBeforeUp(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Down\nDROP TABLE items;\n-- +goose Up\nCREATE TABLE items (id INT);\n"
	if err := os.WriteFile(filepath.Join(dir, "20260301090000_items.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected section order error")
	}
}

func TestValidateDirRejectsUnbalancedStatementBlocks(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	if err := os.WriteFile(filepath.Join(dir, "20260301090000_items.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected unbalanced block error")
	}
}

func TestEmbeddedMatchesDirectory(t *testing.T) {
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("embedded glob: %v", err)
	}
	if len(onDisk) == 0 || len(onDisk) != len(embedded) {
		t.Fatalf("expected %d embedded migrations, got %d", len(onDisk), len(embedded))
	}
	if migrate.Source(migrate.DefaultDir) == nil {
		t.Fatal("default dir should resolve to the embedded set")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if _, err := migrate.Run(context.Background(), nil, migrate.Embedded(), "drop-everything"); err == nil {
		t.Fatal("expected unsupported command error")
	}
	if _, err := migrate.MigrateToVersion(context.Background(), nil, migrate.Embedded(), "yesterday"); err == nil {
		t.Fatal("expected invalid version error")
	}
}
