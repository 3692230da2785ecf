package bigquery

import (
	"testing"

	"github.com/quayside/quayside-backend/pkg/config"
)

func TestTableNamesTrimsWhitespace(t *testing.T) {
	cfg := config.BigQueryConfig{
		EventsTable: " ops_events ",
	}

	tables := tableNames(cfg)

	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0] != "ops_events" {
		t.Fatalf("expected ops_events, got %s", tables[0])
	}
}

func TestCredentialOptionsPrefersInlineJSON(t *testing.T) {
	gcp := config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	}

	opts := credentialOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestCredentialOptionsFallsBackToFile(t *testing.T) {
	gcp := config.GCPConfig{
		ApplicationCredentials: "/tmp/creds",
	}

	opts := credentialOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option when using credentials file, got %d", len(opts))
	}
}

func TestCredentialOptionsDefaultCredentials(t *testing.T) {
	gcp := config.GCPConfig{}

	opts := credentialOptions(gcp)
	if len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}
