package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatproxy"

// Resultados possíveis de uma requisição de chat
const (
	OutcomeOK               = "ok"
	OutcomeBadRequest       = "bad_request"
	OutcomeMethodNotAllowed = "method_not_allowed"
	OutcomeNoAPIKey         = "no_api_key"
	OutcomeUpstreamError    = "upstream_error"
	OutcomeEmptyReply       = "empty_reply"
)

// Metrics agrupa os coletores do serviço
type Metrics struct {
	registry         *prometheus.Registry
	chatRequests     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// New cria os coletores em um registry próprio
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests handled, by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls to the generative AI API, by HTTP status code.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"code"}),
	}

	reg.MustRegister(m.chatRequests, m.upstreamDuration)
	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// ObserveChat conta uma requisição de chat
func (m *Metrics) ObserveChat(outcome string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(outcome).Inc()
}

// ObserveUpstream registra a latência de uma chamada ao modelo; code 0 significa erro de rede
func (m *Metrics) ObserveUpstream(code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.upstreamDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// Handler expõe as métricas no formato Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
