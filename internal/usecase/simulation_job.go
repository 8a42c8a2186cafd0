package usecase

import (
	"context"
	"fmt"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/pkg/logger"
	"PortfolioSim/pkg/queue"
)

// SimulationJobType is the queue message type for dispatched runs.
const SimulationJobType = "simulation.run"

var _ queue.Job = (*SimulationJob)(nil)

// SimulationJob executes queued runs. Failed simulations are recorded on the
// job and acknowledged; they are never redelivered.
type SimulationJob struct {
	executor *Executor
	tracker  *JobTracker
	logger   *logger.Logger
}

func NewSimulationJob(executor *Executor, tracker *JobTracker, lgr *logger.Logger) *SimulationJob {
	return &SimulationJob{executor: executor, tracker: tracker, logger: lgr}
}

func (j *SimulationJob) Name() string { return "simulation-runner" }

func (j *SimulationJob) Type() string { return SimulationJobType }

func (j *SimulationJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[models.SimulationJobPayload](payload)
	if err != nil {
		return queue.Permanent(fmt.Errorf("decode simulation payload: %w", err))
	}
	if p.JobID == "" {
		return queue.Permanent(fmt.Errorf("simulation payload without job id"))
	}

	x := j.executor.StartWithID(ctx, p.JobID, p.Request)
	if err := j.tracker.Track(ctx, x); err != nil {
		return err
	}
	res, err := x.Wait(ctx)
	if err != nil {
		j.logger.Warn("queued simulation failed", logger.String("job_id", p.JobID), logger.Error(err))
		return nil
	}
	j.logger.Debug("queued simulation done",
		logger.String("job_id", p.JobID),
		logger.Int("paths", len(res.Paths)))
	return nil
}
