package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write migration %s: %v", name, err)
	}
}

func TestValidateDirAcceptsWellFormedMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_create_users.sql",
		"-- +goose Up\nCREATE TABLE users (id uuid);\n-- +goose Down\nDROP TABLE users;\n")

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("ValidateDir returned unexpected error: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "create_users.sql",
		"-- +goose Up\n-- +goose Down\n")

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for filename without version prefix")
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_create_users.sql",
		"-- +goose Up\n-- +goose Down\n")
	writeMigration(t, dir, "20250901120000_create_orders.sql",
		"-- +goose Up\n-- +goose Down\n")

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for duplicate migration version")
	}
}

func TestValidateDirRejectsMissingGooseMarkers(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_create_users.sql",
		"CREATE TABLE users (id uuid);\n")

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for migration without goose markers")
	}
}
