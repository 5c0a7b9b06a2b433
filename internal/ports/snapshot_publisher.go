package ports

import (
	"context"
	"trace-emissions-service/internal/domain"
)

// Receives every route and total update produced by an impact run.
type SnapshotPublisher interface {
	Publish(ctx context.Context, s domain.ImpactSnapshot) error
}
