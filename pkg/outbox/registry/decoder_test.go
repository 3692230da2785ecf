package registry

import (
	"encoding/json"
	"testing"

	"github.com/quayside/quayside-backend/pkg/enums"
)

func TestDecoderRegistryDecodesRegisteredVersion(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventFeesReconciled, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	output, err := reg.Decode(enums.EventFeesReconciled, 1, json.RawMessage(`{"status":"settled"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["status"] != "settled" {
		t.Fatalf("unexpected output %+v", output)
	}
}

func TestDecoderRegistryRejectsUnknownVersion(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventFeesReconciled, 1, func(payload json.RawMessage) (interface{}, error) {
		return nil, nil
	})

	if _, err := reg.Decode(enums.EventFeesReconciled, 2, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for unregistered version")
	}
	if _, err := reg.Decode(enums.EventPoolLocked, 1, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for unregistered event type")
	}
}
