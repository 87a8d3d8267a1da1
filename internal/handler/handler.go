package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitormoschetta/go-chatproxy/internal/metrics"
	"github.com/vitormoschetta/go-chatproxy/internal/model"
	"github.com/vitormoschetta/go-chatproxy/internal/server"
	"github.com/vitormoschetta/go-chatproxy/internal/service"
	"github.com/vitormoschetta/go-chatproxy/internal/widget"
)

const (
	maxBodyBytes            = 64 << 10
	defaultMaxMessageLength = 2000
)

// Mensagens de erro devolvidas ao cliente
const (
	errMethodNotAllowed = "Method not allowed"
	errInvalidBody      = "Invalid request body"
	errMessageRequired  = "Message is required"
	errMessageTooLong   = "Message is too long"
)

// Handler contém as dependências necessárias para os handlers HTTP
type Handler struct {
	server   *server.Server
	validate *validator.Validate
}

// NewHandler cria uma nova instância do Handler
func NewHandler(srv *server.Server) *Handler {
	return &Handler{
		server:   srv,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandleRoot retorna informações sobre o serviço
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	b := h.server.Business

	response := map[string]interface{}{
		"service": b.Name + " chat assistant",
		"endpoints": map[string]interface{}{
			"chat": map[string]interface{}{
				"url":         "/api/chat",
				"method":      "POST",
				"description": "Ask the assistant a question",
				"example": map[string]string{
					"message": "What are your opening hours?",
				},
			},
			"health": map[string]interface{}{
				"url":    "/health",
				"method": "GET",
			},
			"widget": map[string]interface{}{
				"url":    "/widget.js",
				"method": "GET",
			},
			"metrics": map[string]interface{}{
				"url":    "/metrics",
				"method": "GET",
			},
		},
		"contact": map[string]string{
			"phone": b.EmergencyPhone,
			"email": b.Email,
		},
	}

	respondJSON(w, r, http.StatusOK, response)
}

// HandleHealth retorna o status de saúde do servidor
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write response")
	}
}

// HandleWidget entrega o script do widget de chat
func (h *Handler) HandleWidget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := w.Write(widget.Script()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write widget script")
	}
}

// HandleChat processa uma pergunta do widget.
//
// Erros do cliente viram 400/405 com {error}. Falta de chave, falha da API
// ou resposta sem texto viram 200 com uma mensagem de fallback em {response}.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		h.server.Metrics.ObserveChat(metrics.OutcomeMethodNotAllowed)
		w.Header().Set("Allow", "POST, OPTIONS")
		respondError(w, r, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.server.Metrics.ObserveChat(metrics.OutcomeBadRequest)
		if errors.Is(err, io.EOF) {
			respondError(w, r, http.StatusBadRequest, errMessageRequired)
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit_bytes", tooLarge.Limit).Msg("Request body exceeds size limit")
			respondError(w, r, http.StatusBadRequest, errMessageTooLong)
			return
		}
		logger.Warn().Err(err).Msg("Client sent malformed JSON request")
		respondError(w, r, http.StatusBadRequest, errInvalidBody)
		return
	}

	// Espaços só contam para decidir se a mensagem está vazia; o texto segue intacto
	trimmed := model.ChatRequest{Message: strings.TrimSpace(req.Message)}
	if err := h.validate.Struct(trimmed); err != nil {
		h.server.Metrics.ObserveChat(metrics.OutcomeBadRequest)
		respondError(w, r, http.StatusBadRequest, errMessageRequired)
		return
	}
	if err := h.validate.Var(req.Message, "max="+strconv.Itoa(h.maxMessageLength())); err != nil {
		h.server.Metrics.ObserveChat(metrics.OutcomeBadRequest)
		logger.Warn().
			Int("length", utf8.RuneCountInString(req.Message)).
			Int("limit", h.maxMessageLength()).
			Msg("Message exceeds length limit")
		respondError(w, r, http.StatusBadRequest, errMessageTooLong)
		return
	}

	logger.Debug().Str("message", req.Message).Msg("Processing chat message")

	reply, err := h.server.Assistant.Reply(r.Context(), req.Message)
	if err != nil {
		reply = h.fallback(logger, err)
	} else {
		h.server.Metrics.ObserveChat(metrics.OutcomeOK)
	}

	respondJSON(w, r, http.StatusOK, model.ChatResponse{Response: reply})
}

// fallback escolhe a mensagem amigável para cada classe de erro
func (h *Handler) fallback(logger *zerolog.Logger, err error) string {
	b := h.server.Business

	var upErr *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrMissingAPIKey):
		h.server.Metrics.ObserveChat(metrics.OutcomeNoAPIKey)
		logger.Error().Msg("GEMINI_API_KEY environment variable not set")
		return b.Unavailable()
	case errors.Is(err, service.ErrEmptyReply):
		h.server.Metrics.ObserveChat(metrics.OutcomeEmptyReply)
		logger.Warn().Msg("Model response had no text")
		return b.EmptyReply()
	case errors.As(err, &upErr):
		h.server.Metrics.ObserveChat(metrics.OutcomeUpstreamError)
		logger.Error().Err(err).Int("upstream_status", upErr.StatusCode).Msg("Upstream call failed")
		return b.Trouble()
	default:
		h.server.Metrics.ObserveChat(metrics.OutcomeUpstreamError)
		logger.Error().Err(err).Msg("Failed to process message")
		return b.Trouble()
	}
}

func (h *Handler) maxMessageLength() int {
	if h.server.Config == nil || h.server.Config.Chat.MaxMessageLength < 1 {
		return defaultMaxMessageLength
	}
	return h.server.Config.Chat.MaxMessageLength
}

// requestLogger usa o logger do contexto quando o middleware o injetou
func requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, model.ChatResponse{Error: message})
}
