package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quayside/quayside-backend/pkg/enums"
)

type decoderFunc func(payload json.RawMessage) (interface{}, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps event type and schema version to a payload decoder.
// Consumers register the versions they understand; anything else is rejected
// at decode time instead of being half-parsed.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders map[decoderKey]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]decoderFunc)}
}

// Register stores the decoder for one event type at one version.
func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode parses the payload with the registered decoder, erroring when no
// decoder exists for that type and version pair.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]; ok {
		return decoder(payload)
	}
	return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
}
