package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/internal/repository"
	"PortfolioSim/internal/service/cache"
	"PortfolioSim/internal/service/ratelimit"
	"PortfolioSim/internal/usecase"
	"PortfolioSim/pkg/logger"
	"PortfolioSim/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{"portfolio":[{"ticker":"SPY","weight":0.6},{"ticker":"BND","weight":0.4}],
	"initialValue":10000,"days":20,"simulations":25,"options":{"seed":7}}`

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestEcho(t *testing.T, limiter *ratelimit.Limiter) *echo.Echo {
	t.Helper()
	runner := usecase.NewSimulationRunner(logger.Nop(), metrics.Nop{},
		usecase.WithWorkers(2),
		usecase.WithLimits(models.Limits{MaxDays: 1000, MaxSimulations: 1000}))
	executor := usecase.NewExecutor(runner, logger.Nop())
	store := repository.NewCacheJobStore(cache.NewTTLCache(), time.Hour)
	tracker := usecase.NewJobTracker(store, nil, metrics.Nop{}, logger.Nop())
	dispatcher := usecase.NewLocalDispatcher(executor, tracker, logger.Nop())
	jobs := usecase.NewJobService(tracker, dispatcher, runner.Limits(), logger.Nop())

	e := echo.New()
	NewSimulationsEchoHandler(logger.Nop(), jobs, executor, limiter).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestSubmitAndPoll(t *testing.T) {
	e := newTestEcho(t, ratelimit.New(0, 1, 0))

	rec, env := do(e, http.MethodPost, "/api/simulations", validBody)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var sub submitResponse
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, models.JobQueued, sub.Status)

	var job models.Job
	require.Eventually(t, func() bool {
		rec, env := do(e, http.MethodGet, "/api/simulations/"+sub.ID, "")
		if rec.Code != http.StatusOK {
			return false
		}
		job = models.Job{}
		_ = json.Unmarshal(env.Data, &job)
		return job.Status == models.JobComplete
	}, 10*time.Second, 20*time.Millisecond)

	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.Stats)
	assert.Equal(t, models.Stats{Simulations: 25, Days: 20}, *job.Stats)
	assert.Empty(t, job.Results, "results only on request")

	_, env = do(e, http.MethodGet, "/api/simulations/"+sub.ID+"?include=results", "")
	job = models.Job{}
	require.NoError(t, json.Unmarshal(env.Data, &job))
	require.Len(t, job.Results, 25)
	assert.Len(t, job.Results[0].Points, 21)
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	e := newTestEcho(t, ratelimit.New(0, 1, 0))

	for name, body := range map[string]string{
		"empty portfolio":   `{"portfolio":[],"initialValue":1,"days":1,"simulations":1}`,
		"zero days":         `{"portfolio":[{"ticker":"SPY","weight":1}],"initialValue":1,"days":0,"simulations":1}`,
		"weight above one":  `{"portfolio":[{"ticker":"SPY","weight":1.5}],"initialValue":1,"days":1,"simulations":1}`,
		"duplicate tickers": `{"portfolio":[{"ticker":"SPY","weight":0.5},{"ticker":"spy","weight":0.5}],"initialValue":1,"days":1,"simulations":1}`,
		"days over limit":   `{"portfolio":[{"ticker":"SPY","weight":1}],"initialValue":1,"days":5000,"simulations":1}`,
		"malformed":         `{"portfolio":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, env := do(e, http.MethodPost, "/api/simulations", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, env.Status)
			assert.NotEmpty(t, env.Data)
		})
	}
}

func TestGetUnknownJob(t *testing.T) {
	e := newTestEcho(t, ratelimit.New(0, 1, 0))
	rec, env := do(e, http.MethodGet, "/api/simulations/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_NOT_FOUND")
}

func TestSubmitRateLimited(t *testing.T) {
	e := newTestEcho(t, ratelimit.New(0.001, 1, time.Minute))

	rec, _ := do(e, http.MethodPost, "/api/simulations", validBody)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec, _ = do(e, http.MethodPost, "/api/simulations", validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func dialStream(t *testing.T, e *echo.Echo) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/simulations/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvents(t *testing.T, conn *websocket.Conn) []models.Event {
	t.Helper()
	var events []models.Event
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var ev models.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return events
		}
		events = append(events, ev)
	}
}

func TestStreamWritesEveryEvent(t *testing.T) {
	conn := dialStream(t, newTestEcho(t, ratelimit.New(0, 1, 0)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(validBody)))

	events := readEvents(t, conn)
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, models.EventStarted, events[0].Type)
	last := events[len(events)-1]
	assert.Equal(t, models.EventComplete, last.Type)
	assert.Len(t, last.Results, 25)

	prev := 0
	for _, ev := range events[1 : len(events)-1] {
		assert.Equal(t, models.EventProgress, ev.Type)
		assert.Greater(t, ev.Progress, prev)
		prev = ev.Progress
	}
}

func TestStreamReportsConfigurationError(t *testing.T) {
	conn := dialStream(t, newTestEcho(t, ratelimit.New(0, 1, 0)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"portfolio":[],"initialValue":1,"days":1,"simulations":1}`)))

	events := readEvents(t, conn)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventStarted, events[0].Type)
	assert.Equal(t, models.EventError, events[1].Type)
	assert.Contains(t, events[1].Message, "portfolio")
}

func TestStreamRejectsMalformedRequest(t *testing.T) {
	conn := dialStream(t, newTestEcho(t, ratelimit.New(0, 1, 0)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))

	events := readEvents(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventError, events[0].Type)
}
