package dbtypes

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New(), uuid.New()}

	value, err := ids.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned UUIDArray
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(scanned) != len(ids) {
		t.Fatalf("expected %d ids, got %d", len(ids), len(scanned))
	}
	for i := range ids {
		if scanned[i] != ids[i] {
			t.Fatalf("id %d mismatch: %s vs %s", i, scanned[i], ids[i])
		}
	}
}

func TestUUIDArrayScanEmpty(t *testing.T) {
	var ids UUIDArray
	if err := ids.Scan("{}"); err != nil {
		t.Fatalf("Scan empty literal: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty array, got %d", len(ids))
	}

	if err := ids.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty array after nil scan, got %d", len(ids))
	}
}

func TestUUIDArrayScanRejectsGarbage(t *testing.T) {
	var ids UUIDArray
	if err := ids.Scan("{not-a-uuid}"); err == nil {
		t.Fatal("expected parse error")
	}
}
