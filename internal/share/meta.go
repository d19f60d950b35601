// Package share implements the conversation share-sync engine: the
// fingerprint computer, asset uploader, snapshot builder, publish
// pipeline, and the debouncing scheduler in front of it.
package share

import (
	"encoding/json"
	"fmt"
)

// MetaSchemaVersion is bumped whenever the Meta wire shape changes in a
// way old readers cannot handle.
const MetaSchemaVersion = 1

// DefaultMetaKey is the namespaced key under which sharing metadata is
// attached to a conversation in the store's side channel.
const DefaultMetaKey = "mailshare.sharing"

// Meta is the per-conversation sharing record.
//
// Invariants:
//   - Shared is true iff a live snapshot exists at Key.
//   - Hash equals the fingerprint of the non-hidden messages at the time
//     of the last successful publish.
//   - Key is assigned on first publish and never changes while shared,
//     so previously handed-out links keep working across republishes.
//   - FileURLs only grows; an uploaded attachment keeps its mapping even
//     after it disappears from the thread.
type Meta struct {
	SchemaVersion int               `json:"schema_version"`
	Shared        bool              `json:"shared"`
	Key           string            `json:"key,omitempty"`
	Hash          string            `json:"combined_version_hash,omitempty"`
	FileURLs      map[string]string `json:"file_urls,omitempty"`
}

// NewMeta returns an empty, unshared record at the current schema version.
func NewMeta() *Meta {
	return &Meta{SchemaVersion: MetaSchemaVersion}
}

// DecodeMeta parses a side-channel value. Empty input decodes to a fresh
// record so callers need not special-case a never-shared conversation.
func DecodeMeta(b []byte) (*Meta, error) {
	if len(b) == 0 {
		return NewMeta(), nil
	}
	m := &Meta{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("decode sharing metadata: %w", err)
	}
	if m.SchemaVersion > MetaSchemaVersion {
		return nil, fmt.Errorf("sharing metadata schema %d is newer than supported %d", m.SchemaVersion, MetaSchemaVersion)
	}
	return m, nil
}

// Encode serializes the record for the side channel.
func (m *Meta) Encode() ([]byte, error) {
	m.SchemaVersion = MetaSchemaVersion
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode sharing metadata: %w", err)
	}
	return b, nil
}
