package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveChat(t *testing.T) {
	m := New()

	m.ObserveChat(OutcomeOK)
	m.ObserveChat(OutcomeOK)
	m.ObserveChat(OutcomeNoAPIKey)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chatRequests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatRequests.WithLabelValues(OutcomeNoAPIKey)))
}

func TestObserveUpstream(t *testing.T) {
	m := New()

	m.ObserveUpstream(200, 120*time.Millisecond)
	m.ObserveUpstream(0, time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(m.upstreamDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveChat(OutcomeOK)
		m.ObserveUpstream(500, time.Millisecond)
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveChat(OutcomeBadRequest)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chatproxy_chat_requests_total{outcome="bad_request"} 1`)
}
