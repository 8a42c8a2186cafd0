package repository

import (
	"context"
	"time"

	"PortfolioSim/internal/domain/models"
)

// JobStore keeps the latest snapshot of asynchronously dispatched runs.
type JobStore interface {
	Save(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher fans run lifecycle events out to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.Event) error
	Close() error
}

type Metrics interface {
	RunStarted()
	RunFinished(status string, elapsed time.Duration)
	TrajectoriesCompleted(n int)
	RecordError(kind string)
}
