package inventory

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// SnapshotRecord is one record in the shape the sync endpoint expects
type SnapshotRecord struct {
	RawText           string `json:"raw_text" yaml:"raw_text"`
	Quantity          int64  `json:"quantity" yaml:"quantity"`
	UnitPrice         int64  `json:"unit_price" yaml:"unit_price"`
	ProductIdentifier string `json:"product_identifier" yaml:"product_identifier"`
	Subtotal          int64  `json:"subtotal" yaml:"subtotal"`
}

// Snapshot is a point-in-time export of a session
type Snapshot struct {
	SessionID string           `json:"session_id" yaml:"session_id"`
	Section   string           `json:"section,omitempty" yaml:"section,omitempty"`
	StartedAt time.Time        `json:"started_at" yaml:"started_at"`
	TakenAt   time.Time        `json:"taken_at" yaml:"taken_at"`
	Count     int              `json:"count" yaml:"count"`
	Total     int64            `json:"total" yaml:"total"`
	Records   []SnapshotRecord `json:"records" yaml:"records"`
}

// Snapshot exports the session, oldest record first
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]SnapshotRecord, 0, len(s.items))
	for _, item := range s.items {
		records = append(records, SnapshotRecord{
			RawText:           item.RawText,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			ProductIdentifier: item.ProductIdentifier,
			Subtotal:          item.Subtotal,
		})
	}

	return Snapshot{
		SessionID: s.id,
		Section:   s.section,
		StartedAt: s.startedAt,
		TakenAt:   s.now(),
		Count:     len(s.items),
		Total:     s.total,
		Records:   records,
	}
}

// YAML encodes the snapshot as YAML
func (snap Snapshot) YAML() ([]byte, error) {
	return yaml.Marshal(snap)
}

// JSON encodes the snapshot as indented JSON
func (snap Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
