package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PortfolioSim/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" default:"3" validate:"gte=1,lte=10"`
	Items []struct {
		ID string `json:"id" validate:"required"`
	} `json:"items" validate:"dive"`
}

func newContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var env APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestDataResponseWritesRealStatus(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, AcceptedResponse(c, map[string]string{"id": "x"}))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusAccepted, env.Status)
	assert.Equal(t, "Accepted", env.Message)
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	err := TooManyRequestsError("slow down")
	require.NoError(t, AppErrorResponse(c, errors.Join(errors.New("ctx"), err)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_TOO_MANY_REQUESTS")

	c, rec = newContext(http.MethodGet, "")
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReadAndValidateRequest(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, `{"name":"a"}`)
		var req sampleRequest
		assert.Nil(t, ReadAndValidateRequest(c, &req))
		assert.Equal(t, 3, req.Count)
	})

	t.Run("json field names in errors", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, `{"count":50,"items":[{"id":""}]}`)
		var req sampleRequest
		errs := ReadAndValidateRequest(c, &req)
		require.Len(t, errs, 3)

		fields := map[string]string{}
		for _, e := range errs {
			fields[e.Field] = e.Code
		}
		assert.Equal(t, "ERR_REQUIRED", fields["name"])
		assert.Equal(t, "ERR_LTE", fields["count"])
		assert.Equal(t, "ERR_REQUIRED", fields["items[0].id"])
	})

	t.Run("malformed body", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, `{"name":`)
		var req sampleRequest
		errs := ReadAndValidateRequest(c, &req)
		require.Len(t, errs, 1)
		assert.Equal(t, "ERR_INVALID_BODY", errs[0].Code)
	})
}

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/panic", func(c echo.Context) error { panic("kaboom") })
}

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := NewServer(logger.Nop(), pingHandler{}, WithMetrics("/metrics", reg, reg))

	for _, tc := range []struct {
		path string
		code int
		body string
	}{
		{"/healthz", http.StatusOK, `"ok"`},
		{"/ping", http.StatusOK, `"pong"`},
		{"/panic", http.StatusInternalServerError, "Internal Server Error"},
		{"/metrics", http.StatusOK, "portsim_http_requests_total"},
	} {
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.code, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), tc.body, tc.path)
	}
}

func TestClientSendAndParse(t *testing.T) {
	ts := httptest.NewServer(NewServer(logger.Nop(), pingHandler{}, WithMetrics("", prometheus.NewRegistry(), nil)).Echo())
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))

	var out string
	require.NoError(t, c.SendAndParse(context.Background(), &RequestOptions{Method: http.MethodGet, Path: "/ping"}, &out))
	assert.Equal(t, "pong", out)

	err := c.SendAndParse(context.Background(), &RequestOptions{Method: http.MethodGet, Path: "/missing"}, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := NewServer(logger.Nop(), pingHandler{}, WithMetrics("", prometheus.NewRegistry(), nil))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}
