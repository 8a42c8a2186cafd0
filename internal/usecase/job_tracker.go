package usecase

import (
	"context"
	"fmt"
	"time"

	"PortfolioSim/internal/domain/models"
	drepo "PortfolioSim/internal/domain/repository"
	"PortfolioSim/pkg/logger"
)

// JobTracker mirrors execution events into the job store and the optional
// event publisher.
type JobTracker struct {
	store     drepo.JobStore
	publisher drepo.EventPublisher
	metrics   drepo.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

// NewJobTracker builds a tracker. publisher may be nil.
func NewJobTracker(store drepo.JobStore, publisher drepo.EventPublisher, metrics drepo.Metrics, lgr *logger.Logger) *JobTracker {
	return &JobTracker{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    lgr,
		now:       time.Now,
	}
}

// Create stores a new queued job.
func (t *JobTracker) Create(ctx context.Context, id string) (*models.Job, error) {
	now := t.now()
	job := &models.Job{ID: id, Status: models.JobQueued, CreatedAt: now, UpdatedAt: now}
	if err := t.store.Save(ctx, job); err != nil {
		t.metrics.RecordError("job_store")
		return nil, fmt.Errorf("save job: %w", err)
	}
	return job, nil
}

// Get returns the current snapshot of a job.
func (t *JobTracker) Get(ctx context.Context, id string) (*models.Job, error) {
	return t.store.Get(ctx, id)
}

// Track drains x and folds every event into the stored job. It returns once
// the terminal event has been recorded. Simulation failures are recorded on
// the job, not returned; only store failures are.
func (t *JobTracker) Track(ctx context.Context, x *Execution) error {
	job, err := t.store.Get(ctx, x.ID())
	if err != nil {
		now := t.now()
		job = &models.Job{ID: x.ID(), Status: models.JobQueued, CreatedAt: now}
	}

	var saveErr error
	for ev := range x.Events() {
		job.Apply(ev, t.now())
		t.publish(ctx, ev)
		if err := t.store.Save(ctx, job); err != nil {
			t.metrics.RecordError("job_store")
			t.logger.Error("save job failed",
				logger.String("job_id", job.ID),
				logger.String("event", string(ev.Type)),
				logger.Error(err))
			saveErr = err
		}
	}
	if saveErr != nil {
		return fmt.Errorf("track job %s: %w", job.ID, saveErr)
	}
	return nil
}

func (t *JobTracker) publish(ctx context.Context, ev models.Event) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, ev); err != nil {
		t.metrics.RecordError("publish")
		t.logger.Warn("publish event failed",
			logger.String("run_id", ev.RunID),
			logger.String("event", string(ev.Type)),
			logger.Error(err))
	}
}
