package usecase

import (
	"context"
	"fmt"

	"PortfolioSim/internal/domain/models"
	dservice "PortfolioSim/internal/domain/service"
	"PortfolioSim/pkg/logger"

	"github.com/google/uuid"
)

// JobService accepts asynchronous simulation submissions.
type JobService struct {
	tracker    *JobTracker
	dispatcher dservice.Dispatcher
	limits     models.Limits
	logger     *logger.Logger
}

func NewJobService(tracker *JobTracker, dispatcher dservice.Dispatcher, limits models.Limits, lgr *logger.Logger) *JobService {
	return &JobService{tracker: tracker, dispatcher: dispatcher, limits: limits, logger: lgr}
}

// Submit validates req, records a queued job and dispatches it. The returned
// job is the queued snapshot.
func (s *JobService) Submit(ctx context.Context, req models.SimulationRequest) (*models.Job, error) {
	if err := req.Validate(s.limits); err != nil {
		return nil, err
	}
	job, err := s.tracker.Create(ctx, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := s.dispatcher.Dispatch(ctx, job.ID, req); err != nil {
		return nil, fmt.Errorf("dispatch job: %w", err)
	}
	s.logger.Info("simulation queued",
		logger.String("job_id", job.ID),
		logger.Int("simulations", req.Simulations),
		logger.Int("days", req.Days))
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	return s.tracker.Get(ctx, id)
}
