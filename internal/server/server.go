package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vitormoschetta/go-chatproxy/internal/config"
	"github.com/vitormoschetta/go-chatproxy/internal/metrics"
	"github.com/vitormoschetta/go-chatproxy/internal/prompt"
	"github.com/vitormoschetta/go-chatproxy/internal/service"
)

// Assistant gera a resposta para uma mensagem do usuário
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

// UpstreamTransport mede e registra as chamadas feitas à API generativa.
// A chave viaja em header e nenhum header é logado.
type UpstreamTransport struct {
	Base    http.RoundTripper
	Metrics *metrics.Metrics
}

func (t *UpstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	code := 0
	if resp != nil {
		code = resp.StatusCode
	}
	t.Metrics.ObserveUpstream(code, elapsed)

	event := log.Debug()
	if err != nil || code >= http.StatusBadRequest {
		event = log.Warn().Err(err)
	}
	event.
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", code).
		Dur("duration", elapsed).
		Msg("Upstream request")

	return resp, err
}

// NewUpstreamClient cria o HTTP client usado nas chamadas ao modelo; timeout 0 desativa o limite
func NewUpstreamClient(timeout time.Duration, m *metrics.Metrics) *http.Client {
	return &http.Client{
		Transport: &UpstreamTransport{
			Base:    http.DefaultTransport,
			Metrics: m,
		},
		Timeout: timeout,
	}
}

// Server representa o servidor HTTP com todas as dependências
type Server struct {
	Config    *config.Config
	Assistant Assistant
	Business  prompt.Business
	Metrics   *metrics.Metrics
	Router    chi.Router
}

// NewServer cria uma nova instância do servidor
func NewServer(cfg *config.Config) *Server {
	m := metrics.New()
	business := prompt.DefaultBusiness()

	httpClient := NewUpstreamClient(cfg.Gemini.Timeout, m)
	assistant := service.NewAssistant(business, service.OptionsFromConfig(cfg, httpClient))

	if cfg.APIKey() == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set - chat replies will fall back to the phone number")
	}

	log.Info().
		Str("model", cfg.Gemini.Model).
		Str("prompt_style", cfg.Chat.PromptStyle).
		Dur("upstream_timeout", cfg.Gemini.Timeout).
		Msg("Assistant configured")

	return &Server{
		Config:    cfg,
		Assistant: assistant,
		Business:  business,
		Metrics:   m,
	}
}

// SetupRouter configura as rotas e middlewares do Chi
func (s *Server) SetupRouter(
	handleRoot func(http.ResponseWriter, *http.Request),
	handleHealth func(http.ResponseWriter, *http.Request),
	handleChat func(http.ResponseWriter, *http.Request),
	handleWidget func(http.ResponseWriter, *http.Request),
) {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(s.allowOrigin()))

	// Rotas
	r.Get("/health", handleHealth)
	r.Get("/widget.js", handleWidget)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	// O handler de chat decide sozinho sobre métodos para responder 405 em JSON
	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/chat", handleChat)
		r.HandleFunc("/worker", handleChat)
	})

	if s.Config != nil && s.Config.Server.StaticDir != "" {
		log.Info().Str("dir", s.Config.Server.StaticDir).Msg("Serving static site")
		r.Handle("/*", http.FileServer(http.Dir(s.Config.Server.StaticDir)))
	} else {
		r.Get("/", handleRoot)
	}

	s.Router = r
}

func (s *Server) allowOrigin() string {
	if s.Config == nil || s.Config.Server.CORSAllowOrigin == "" {
		return "*"
	}
	return s.Config.Server.CORSAllowOrigin
}

// Start inicia o servidor HTTP e faz graceful shutdown quando ctx é cancelado
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Config.Server.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Strs("endpoints", []string{"POST /api/chat", "POST /api/worker", "GET /health", "GET /widget.js", "GET /metrics"}).
			Msg("HTTP server started")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info().Msg("Server stopped gracefully")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
