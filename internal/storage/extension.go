package storage

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ExtensionState is opaque per-instance data keyed by the subsystem that owns
// it. Values are stored as raw JSON so they survive a save without the
// instance knowing their shape.
type ExtensionState map[string]json.RawMessage

// Set marshals v and stores it under key, allocating the map if needed.
func (e *ExtensionState) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal extension %q: %w", key, err)
	}

	if *e == nil {
		*e = ExtensionState{}
	}
	(*e)[key] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value under key into out. It reports false with no
// error when the key is absent.
func (e ExtensionState) Get(key string, out any) (bool, error) {
	raw, ok := e[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal extension %q: %w", key, err)
	}
	return true, nil
}

// Has reports whether a value is stored under key.
func (e ExtensionState) Has(key string) bool {
	raw, ok := e[key]
	return ok && len(raw) > 0
}

// Delete removes key. Deleting from a nil state is a no-op.
func (e ExtensionState) Delete(key string) {
	delete(e, key)
}

// Keys returns the stored keys in sorted order.
func (e ExtensionState) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
