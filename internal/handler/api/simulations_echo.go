package api

import (
	"errors"
	"time"

	"PortfolioSim/internal/domain/models"
	drepo "PortfolioSim/internal/domain/repository"
	"PortfolioSim/internal/service/ratelimit"
	"PortfolioSim/internal/usecase"
	xhttp "PortfolioSim/pkg/http"
	xlogger "PortfolioSim/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// SimulationsEchoHandler serves run submission, job polling and the live
// event stream.
type SimulationsEchoHandler struct {
	logger   *xlogger.Logger
	jobs     *usecase.JobService
	executor *usecase.Executor
	limiter  *ratelimit.Limiter
	upgrader websocket.Upgrader
	readWait time.Duration
}

func NewSimulationsEchoHandler(logger *xlogger.Logger, jobs *usecase.JobService, executor *usecase.Executor, limiter *ratelimit.Limiter) *SimulationsEchoHandler {
	return &SimulationsEchoHandler{
		logger:   logger,
		jobs:     jobs,
		executor: executor,
		limiter:  limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
		},
		readWait: 30 * time.Second,
	}
}

func (h *SimulationsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/simulations")
	g.POST("", h.Submit)
	g.GET("/stream", h.Stream)
	g.GET("/:id", h.Get)
}

type submitResponse struct {
	ID     string           `json:"id"`
	Status models.JobStatus `json:"status"`
}

// Submit queues a run and answers 202 with the job ID.
func (h *SimulationsEchoHandler) Submit(c echo.Context) error {
	req := &models.SimulationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.limiter.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many simulation requests"))
	}

	job, err := h.jobs.Submit(c.Request().Context(), *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return xhttp.AcceptedResponse(c, submitResponse{ID: job.ID, Status: job.Status})
}

// Get returns the job snapshot. Trajectories are included only with
// ?include=results.
func (h *SimulationsEchoHandler) Get(c echo.Context) error {
	id := c.Param("id")
	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, drepo.ErrJobNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("simulation %s not found", id))
		}
		return h.errorResponse(c, err)
	}
	view := *job
	if c.QueryParam("include") != "results" {
		view.Results = nil
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, view)
}

func (h *SimulationsEchoHandler) errorResponse(c echo.Context, err error) error {
	var ce *models.ConfigurationError
	if errors.As(err, &ce) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_INVALID",
			Field:   ce.Field,
			Message: ce.Message,
		}})
	}
	h.logger.Error("simulation handler error",
		xlogger.String("route", c.Path()),
		xlogger.Error(err))
	return xhttp.InternalServerErrorResponse(c)
}
