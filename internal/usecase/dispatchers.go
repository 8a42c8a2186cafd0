package usecase

import (
	"context"
	"sync"

	"PortfolioSim/internal/domain/models"
	dservice "PortfolioSim/internal/domain/service"
	"PortfolioSim/pkg/logger"
	"PortfolioSim/pkg/queue"
)

var (
	_ dservice.Dispatcher = (*LocalDispatcher)(nil)
	_ dservice.Dispatcher = (*QueueDispatcher)(nil)
)

// LocalDispatcher runs jobs on in-process goroutines.
type LocalDispatcher struct {
	executor *Executor
	tracker  *JobTracker
	logger   *logger.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewLocalDispatcher(executor *Executor, tracker *JobTracker, lgr *logger.Logger) *LocalDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalDispatcher{executor: executor, tracker: tracker, logger: lgr, ctx: ctx, cancel: cancel}
}

// Dispatch starts the run detached from the submitting request's context.
func (d *LocalDispatcher) Dispatch(_ context.Context, jobID string, req models.SimulationRequest) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}
	x := d.executor.StartWithID(d.ctx, jobID, req)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.tracker.Track(context.Background(), x); err != nil {
			d.logger.Error("track job", logger.String("job_id", jobID), logger.Error(err))
		}
	}()
	return nil
}

// Stop cancels in-flight runs and waits for their terminal events to be
// recorded.
func (d *LocalDispatcher) Stop(ctx context.Context) error {
	d.cancel()
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueDispatcher publishes jobs on the work queue for SimulationJob workers.
type QueueDispatcher struct {
	queue queue.QueueService
}

func NewQueueDispatcher(q queue.QueueService) *QueueDispatcher {
	return &QueueDispatcher{queue: q}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, jobID string, req models.SimulationRequest) error {
	return d.queue.PublishMessage(ctx, SimulationJobType, models.SimulationJobPayload{JobID: jobID, Request: req})
}
