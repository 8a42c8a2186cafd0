package usecase

import (
	"context"
	"fmt"
	"sync"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/pkg/logger"

	"github.com/google/uuid"
)

// eventBuffer holds every event a run can emit: started, at most 39 progress
// notifications (n in [20,40) reports on every completion) and the terminal.
const eventBuffer = 64

// Executor starts runs asynchronously and exposes each as an Execution.
type Executor struct {
	runner *SimulationRunner
	logger *logger.Logger
}

func NewExecutor(runner *SimulationRunner, lgr *logger.Logger) *Executor {
	return &Executor{runner: runner, logger: lgr}
}

// Runner returns the runner executions are scheduled on.
func (e *Executor) Runner() *SimulationRunner { return e.runner }

// Start schedules req under a fresh run ID and returns immediately.
func (e *Executor) Start(ctx context.Context, req models.SimulationRequest) *Execution {
	return e.StartWithID(ctx, uuid.NewString(), req)
}

// StartWithID schedules req under id. Cancelling ctx aborts the run with a
// terminal error event.
func (e *Executor) StartWithID(ctx context.Context, id string, req models.SimulationRequest) *Execution {
	x := &Execution{
		id:     id,
		events: make(chan models.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go e.execute(ctx, x, req)
	return x
}

func (e *Executor) execute(ctx context.Context, x *Execution, req models.SimulationRequest) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("execution panic", logger.String("run_id", x.id), logger.Any("panic", r))
			x.finish(nil, fmt.Errorf("%w: %v", models.ErrRuntimeFailure, r))
		}
	}()

	x.events <- models.StartedEvent(x.id)
	res, err := e.runner.Run(ctx, x.id, req, func(pct int) {
		x.events <- models.ProgressEvent(x.id, pct)
	})
	x.finish(res, err)
}

// Execution is one in-flight run. Its event channel yields exactly one
// started event, zero or more progress events and exactly one terminal event,
// then closes.
type Execution struct {
	id     string
	events chan models.Event
	done   chan struct{}
	once   sync.Once
	result *models.Result
	err    error
}

func (x *Execution) ID() string { return x.id }

// Events is buffered for the whole run; a caller that never reads it does not
// stall the simulation.
func (x *Execution) Events() <-chan models.Event { return x.events }

// Done is closed once the terminal event has been emitted.
func (x *Execution) Done() <-chan struct{} { return x.done }

// Wait blocks until the run finishes or ctx is done.
func (x *Execution) Wait(ctx context.Context) (*models.Result, error) {
	select {
	case <-x.done:
		return x.result, x.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (x *Execution) finish(res *models.Result, err error) {
	x.once.Do(func() {
		if err != nil {
			x.err = err
			x.events <- models.ErrorEvent(x.id, err)
		} else {
			x.result = res
			x.events <- models.CompleteEvent(res)
		}
		close(x.events)
		close(x.done)
	})
}
