package models

// SnapshotEvent is the Kafka envelope for pushed product snapshots.
type SnapshotEvent struct {
	Pattern string   `json:"pattern"`
	Data    Snapshot `json:"data"`
}

const SnapshotPattern = "product.snapshot"
