package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/subscription"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	rows []domain.Subscription
	err  error
}

func (r *memRepo) Insert(_ context.Context, s domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, s)
	return nil
}

func (r *memRepo) snapshot() []domain.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Subscription(nil), r.rows...)
}

type countingSender struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSender) Send(context.Context, domain.SubscriberEmail, string, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil
}

type testServer struct {
	srv     *Server
	repo    *memRepo
	sender  *countingSender
	logs    *bytes.Buffer
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, repo *memRepo) *testServer {
	t.Helper()
	logs := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sender := &countingSender{}

	srv := NewServer(Options{
		Subscriptions: subscription.NewService(repo),
		Notifier:      sender,
		Logger:        logger.New(logs, logger.DEBUG, true),
		Metrics:       m,
		Gatherer:      reg,
	})
	return &testServer{srv: srv, repo: repo, sender: sender, logs: logs, metrics: m}
}

func (ts *testServer) postForm(body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSubscribe_ValidForm(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	rec := ts.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rows := ts.repo.snapshot()
	require.Len(t, rows, 1)
	assert.Equal(t, "ursula_le_guin@gmail.com", rows[0].Email)
	assert.Equal(t, "le guin", rows[0].Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.Subscriptions.WithLabelValues(metrics.OutcomeOK)))
}

func TestSubscribe_InvalidForms(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing email", "name=le%20guin"},
		{"missing name", "email=ursula_le_guin%40gmail.com"},
		{"missing both", ""},
		{"empty name", "name=&email=ursula_le_guin%40gmail.com"},
		{"blank name", "name=%20%20&email=ursula_le_guin%40gmail.com"},
		{"empty email", "name=Ursula&email="},
		{"invalid email", "name=Ursula&email=definitely-not-an-email"},
		{"forbidden name char", "name=%3Cscript%3E&email=ursula_le_guin%40gmail.com"},
		{"name not utf-8", "name=%FF&email=ursula_le_guin%40gmail.com"},
		{"email not utf-8", "name=Ursula&email=ursula%FF%40gmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &memRepo{})

			rec := ts.postForm(tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Empty(t, ts.repo.snapshot())
			assert.NotContains(t, ts.logs.String(), `"level":"ERROR"`)
			assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.Subscriptions.WithLabelValues(metrics.OutcomeInvalid)))
		})
	}
}

func TestSubscribe_NonFormBodyIsRejected(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	req := httptest.NewRequest(http.MethodPost, "/subscriptions",
		strings.NewReader(`{"name":"Ursula","email":"ursula_le_guin@gmail.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.repo.snapshot())
}

func TestSubscribe_StoreFailure(t *testing.T) {
	ts := newTestServer(t, &memRepo{err: errors.New("connection refused")})

	rec := ts.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, ts.repo.snapshot())
	assert.Contains(t, ts.logs.String(), `"level":"ERROR"`)
	assert.Contains(t, ts.logs.String(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.Subscriptions.WithLabelValues(metrics.OutcomeError)))
}

func TestSubscribe_RepeatedRequestsStoreTwice(t *testing.T) {
	ts := newTestServer(t, &memRepo{})
	body := "name=le%20guin&email=ursula_le_guin%40gmail.com"

	require.Equal(t, http.StatusOK, ts.postForm(body).Code)
	require.Equal(t, http.StatusOK, ts.postForm(body).Code)

	rows := ts.repo.snapshot()
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestSubscribe_LogsCarryRequestContext(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	rec := ts.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com", "X-Request-Id", "req-123")
	require.Equal(t, http.StatusOK, rec.Code)

	var handlerLines int
	for _, line := range strings.Split(strings.TrimSpace(ts.logs.String()), "\n") {
		var entry map[string]string
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		if entry["msg"] == "http request" {
			continue
		}
		handlerLines++
		assert.Equal(t, "req-123", entry["request_id"], line)
		assert.Equal(t, "le guin", entry["subscriber_name"], line)
		assert.NotEmpty(t, entry["subscriber_email"], line)
		assert.NotEqual(t, "ursula_le_guin@gmail.com", entry["subscriber_email"], "email must be redacted")
	}
	assert.GreaterOrEqual(t, handlerLines, 3)
}

func TestSubscribe_GeneratesRequestIDWhenAbsent(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	require.Equal(t, http.StatusOK, ts.postForm("name=Ursula&email=ursula%40example.com").Code)
	assert.Regexp(t, `"request_id":"[^"]+"`, ts.logs.String())
}

func TestSubscribe_DoesNotInvokeNotifier(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	require.Equal(t, http.StatusOK, ts.postForm("name=Ursula&email=ursula%40example.com").Code)
	require.Equal(t, http.StatusBadRequest, ts.postForm("name=Ursula").Code)

	assert.Same(t, ts.sender, ts.srv.notifier)
	assert.Zero(t, ts.sender.calls)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health_check", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get("Content-Length"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &memRepo{})
	require.Equal(t, http.StatusOK, ts.postForm("name=Ursula&email=ursula%40example.com").Code)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `newsletter_subscriptions_total{outcome="ok"} 1`)
}

func TestSubscribe_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &memRepo{})

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscriptions", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
