package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE orders",
		"CHECK (order_amount BETWEEN 1 AND 5)",
		"CREATE UNIQUE INDEX orders_user_art_toy_key ON orders (user_id, art_toy_id)",
		"REFERENCES art_toys (id)",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestArtToysMigrationGuardsQuota(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_art_toys.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no art toys migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE art_toys",
		"CHECK (available_quota >= 0)",
		"CREATE UNIQUE INDEX idx_art_toys_sku ON art_toys (sku)",
		"DROP TABLE IF EXISTS art_toys",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
