package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPoolsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_pools.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no pools migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pools",
		"ux_pools_port_target_date_open",
		"WHERE status = 'open'",
		"fees_reconciled_at timestamptz",
		"DROP TABLE IF EXISTS pools",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
