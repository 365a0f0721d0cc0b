package kafka

import (
	"context"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
)

// Consumer defines the interface for Kafka message consumption
type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// SnapshotHandler applies a pushed product snapshot.
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, snapshot models.Snapshot) error
}
