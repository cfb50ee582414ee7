package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/httputil"
	"github.com/platinummonkey/signup/pkg/observability"
	"github.com/platinummonkey/signup/pkg/submission"
)

// mockCatalog is an in-memory catalog.Provider
type mockCatalog struct {
	plans     []catalog.Plan
	addOns    []catalog.AddOn
	defaultID catalog.ID

	plansErr   error
	addOnsErr  error
	defaultErr error
}

func (m *mockCatalog) ListPlans(ctx context.Context) ([]catalog.Plan, error) {
	return m.plans, m.plansErr
}

func (m *mockCatalog) ListAddOns(ctx context.Context) ([]catalog.AddOn, error) {
	return m.addOns, m.addOnsErr
}

func (m *mockCatalog) DefaultPlanID(ctx context.Context) (catalog.ID, error) {
	return m.defaultID, m.defaultErr
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		plans: []catalog.Plan{
			{ID: "1", Name: "Arcade", MonthlyPrice: decimal.NewFromInt(9), YearlyPrice: decimal.NewFromInt(90), IconPath: "/assets/icon-arcade.svg"},
			{ID: "2", Name: "Advanced", MonthlyPrice: decimal.NewFromInt(12), YearlyPrice: decimal.NewFromInt(120), IconPath: "/assets/icon-advanced.svg"},
		},
		addOns: []catalog.AddOn{
			{ID: "1", Name: "Online service", Description: "Access to multiplayer games", MonthlyPrice: decimal.NewFromInt(1), YearlyPrice: decimal.NewFromInt(10)},
		},
		defaultID: "1",
	}
}

// mockGateway records submissions
type mockGateway struct {
	mu     sync.Mutex
	calls  []form.FormValues
	result *submission.Result
	err    error
}

func (m *mockGateway) Submit(ctx context.Context, values form.FormValues) (*submission.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, values)
	return m.result, m.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, cat catalog.Provider, gw submission.Gateway, mutate ...func(*Config)) *Server {
	t.Helper()
	cfg := Config{
		Catalog:     cat,
		Gateway:     gw,
		Logger:      quietLogger(),
		CORSOrigins: []string{"*"},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewServer(cfg)
}

func validBody() string {
	return `{"name":"Stephen King","email":"stephenking@lorem.com","phone":"+1 234 567 890","planType":"1","isYearly":true,"addOns":["1"]}`
}

func doRequest(s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func decodeSubmit(t *testing.T, rr *httptest.ResponseRecorder) submission.Response {
	t.Helper()
	var resp submission.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestListPlans(t *testing.T) {
	for _, path := range []string{"/plans", "/api/plans"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer(t, newMockCatalog(), &mockGateway{})

			rr := doRequest(s, http.MethodGet, path, "")

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp catalog.PlansResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.Len(t, resp.Plans, 2)
			assert.Equal(t, catalog.ID("1"), resp.Plans[0].ID)
			assert.True(t, resp.Plans[1].YearlyPrice.Equal(decimal.NewFromInt(120)))
			require.Len(t, resp.DefaultPlanID, 1)
			assert.Equal(t, catalog.ID("1"), resp.DefaultPlanID[0].Value)
		})
	}
}

func TestListPlans_NoDefault(t *testing.T) {
	cat := newMockCatalog()
	cat.defaultID = ""
	s := newTestServer(t, cat, &mockGateway{})

	rr := doRequest(s, http.MethodGet, "/plans", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"default_plan_id":[]`)
}

func TestListPlans_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*mockCatalog)
	}{
		{name: "plans query", mutate: func(m *mockCatalog) { m.plansErr = errors.New("connection reset") }},
		{name: "default plan query", mutate: func(m *mockCatalog) { m.defaultErr = errors.New("connection reset") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newMockCatalog()
			tt.mutate(cat)
			registry := prometheus.NewRegistry()
			metrics := observability.NewMetrics(registry)
			s := newTestServer(t, cat, &mockGateway{}, func(c *Config) { c.Metrics = metrics })

			rr := doRequest(s, http.MethodGet, "/plans", "")

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.JSONEq(t, `{"error":"Failed to fetch plans"}`, rr.Body.String())
			assert.NotContains(t, rr.Body.String(), "connection reset")
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CatalogLoadErrors.WithLabelValues("plans")))
		})
	}
}

func TestListAddOns(t *testing.T) {
	s := newTestServer(t, newMockCatalog(), &mockGateway{})

	rr := doRequest(s, http.MethodGet, "/addons", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var addOns []catalog.AddOn
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addOns))
	require.Len(t, addOns, 1)
	assert.Equal(t, "Online service", addOns[0].Name)
}

func TestListAddOns_Empty(t *testing.T) {
	cat := newMockCatalog()
	cat.addOns = nil
	s := newTestServer(t, cat, &mockGateway{})

	rr := doRequest(s, http.MethodGet, "/addons", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListAddOns_Error(t *testing.T) {
	cat := newMockCatalog()
	cat.addOnsErr = errors.New("timeout")
	s := newTestServer(t, cat, &mockGateway{})

	rr := doRequest(s, http.MethodGet, "/api/addons", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch addons"}`, rr.Body.String())
}

func TestSubmit_Success(t *testing.T) {
	gw := &mockGateway{result: &submission.Result{UserID: 7, SubscriptionID: 11}}
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	s := newTestServer(t, newMockCatalog(), gw, func(c *Config) { c.Metrics = metrics })

	rr := doRequest(s, http.MethodPost, "/submit", validBody())

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Subscription created successfully","data":{"userId":7,"subscriptionId":11}}`, rr.Body.String())

	require.Len(t, gw.calls, 1)
	got := gw.calls[0]
	assert.Equal(t, "Stephen King", got.Name)
	assert.Equal(t, catalog.ID("1"), got.PlanType)
	assert.True(t, got.IsYearly)
	assert.Equal(t, []catalog.ID{"1"}, got.AddOns)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SubmissionsTotal.WithLabelValues(observability.OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/submit", "200")))
}

func TestSubmit_Conflict(t *testing.T) {
	gw := &mockGateway{err: submission.NewConflictError(errors.New("duplicate key"))}
	s := newTestServer(t, newMockCatalog(), gw)

	rr := doRequest(s, http.MethodPost, "/api/submit", validBody())

	require.Equal(t, http.StatusConflict, rr.Code)
	resp := decodeSubmit(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, submission.CodeEmailExists, resp.Code)
	assert.Equal(t, submission.ConflictMessage, resp.Error)
	assert.NotContains(t, rr.Body.String(), "duplicate key")
}

func TestSubmit_Failure(t *testing.T) {
	gw := &mockGateway{err: submission.NewSubmissionError(errors.New("disk full"))}
	s := newTestServer(t, newMockCatalog(), gw)

	rr := doRequest(s, http.MethodPost, "/submit", validBody())

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to submit form"}`, rr.Body.String())
}

func TestSubmit_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantError  string
		wantFields map[string]string
	}{
		{
			name:      "not json",
			body:      `{"name":`,
			wantError: InvalidBodyMessage,
		},
		{
			name:       "not an object",
			body:       `[1,2]`,
			wantError:  InvalidValuesMessage,
			wantFields: map[string]string{"": "Request body must be a JSON object"},
		},
		{
			name:      "missing fields",
			body:      `{"planType":"1"}`,
			wantError: InvalidValuesMessage,
			wantFields: map[string]string{
				"name":  "Name is required",
				"email": "Email is required",
				"phone": "Phone number is required",
			},
		},
		{
			name:       "bad email",
			body:       `{"name":"A","email":"nope","phone":"1","planType":"1"}`,
			wantError:  InvalidValuesMessage,
			wantFields: map[string]string{"email": "Invalid email format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			s := newTestServer(t, newMockCatalog(), gw)

			rr := doRequest(s, http.MethodPost, "/submit", tt.body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeSubmit(t, rr)
			assert.False(t, resp.Success)
			assert.Equal(t, submission.CodeValidationFailed, resp.Code)
			assert.Equal(t, tt.wantError, resp.Error)
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, resp.Fields)
			}
			assert.Empty(t, gw.calls)
		})
	}
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	gw := &mockGateway{}
	s := newTestServer(t, newMockCatalog(), gw, func(c *Config) { c.MaxBodyBytes = 16 })

	rr := doRequest(s, http.MethodPost, "/submit", validBody())

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, gw.calls)
}

func TestSubmit_UnsupportedContentType(t *testing.T) {
	s := newTestServer(t, newMockCatalog(), &mockGateway{})

	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewBufferString("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestSubmit_RateLimited(t *testing.T) {
	limiter, err := httputil.NewRateLimiter(httputil.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1}, quietLogger())
	require.NoError(t, err)
	gw := &mockGateway{result: &submission.Result{UserID: 1, SubscriptionID: 1}}
	s := newTestServer(t, newMockCatalog(), gw, func(c *Config) { c.RateLimiter = limiter })

	first := doRequest(s, http.MethodPost, "/submit", validBody())
	second := doRequest(s, http.MethodPost, "/api/submit", validBody())

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Len(t, gw.calls, 1)

	// catalog reads are not limited
	assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/plans", "").Code)
}

func TestServer_NotFoundAndMethod(t *testing.T) {
	s := newTestServer(t, newMockCatalog(), &mockGateway{})

	notFound := doRequest(s, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.JSONEq(t, `{"error":"not found"}`, notFound.Body.String())

	wrongMethod := doRequest(s, http.MethodGet, "/submit", "")
	assert.Equal(t, http.StatusMethodNotAllowed, wrongMethod.Code)
}

func TestServer_Middleware(t *testing.T) {
	s := newTestServer(t, newMockCatalog(), &mockGateway{})

	t.Run("request id", func(t *testing.T) {
		rr := doRequest(s, http.MethodGet, "/plans", "")
		assert.NotEmpty(t, rr.Header().Get(httputil.RequestIDHeader))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/submit", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
