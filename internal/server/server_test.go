package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitormoschetta/go-chatproxy/internal/config"
	"github.com/vitormoschetta/go-chatproxy/internal/metrics"
	"github.com/vitormoschetta/go-chatproxy/internal/prompt"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func newRouter(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	srv := &Server{
		Config:   cfg,
		Business: prompt.DefaultBusiness(),
		Metrics:  metrics.New(),
	}
	srv.SetupRouter(okHandler, okHandler, okHandler, okHandler)
	return srv
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS("https://willowsdental.example")(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "https://willowsdental.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, HEAD, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rec := httptest.NewRecorder()
	CORS("*")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/anything", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.False(t, called)
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(requestIDHeader)
	})

	rec := httptest.NewRecorder()
	RequestLogger(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, rec.Header().Get(requestIDHeader), seen)
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")

	rec := httptest.NewRecorder()
	RequestLogger(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestUpstreamTransportRecordsMetrics(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	m := metrics.New()
	client := NewUpstreamClient(0, m)

	resp, err := client.Get(upstream.URL + "/v1beta/models/x:generateContent")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `chatproxy_upstream_request_duration_seconds_count{code="429"} 1`)
}

func TestUpstreamTransportPassesErrorsThrough(t *testing.T) {
	boom := errors.New("connection refused")
	tr := &UpstreamTransport{
		Base: roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, boom }),
	}

	_, err := tr.RoundTrip(httptest.NewRequest(http.MethodPost, "http://upstream.test/x", nil))

	assert.ErrorIs(t, err, boom)
}

func TestRouterServesRootWithoutStaticDir(t *testing.T) {
	srv := newRouter(t, &config.Config{})

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterServesStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Willows</h1>"), 0o644))

	srv := newRouter(t, &config.Config{Server: config.ServerConfig{StaticDir: dir}})

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Willows")

	rec = httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNewServerFromConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	srv := NewServer(cfg)

	assert.NotNil(t, srv.Assistant)
	assert.NotNil(t, srv.Metrics)
	assert.Equal(t, "Willows Dental Group", srv.Business.Name)
	assert.Equal(t, ":9090", srv.Config.Server.Addr)
}

func TestStartStopsOnCancel(t *testing.T) {
	srv := newRouter(t, &config.Config{Server: config.ServerConfig{Addr: "127.0.0.1:0"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, srv.Start(ctx))
}
