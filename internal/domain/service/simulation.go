package service

import (
	"context"

	"PortfolioSim/internal/domain/models"
)

// Dispatcher hands a validated request off for asynchronous execution under
// the given job ID.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string, req models.SimulationRequest) error
}
