package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/vitormoschetta/go-chatproxy/internal/config"
	"github.com/vitormoschetta/go-chatproxy/internal/prompt"
)

var (
	// ErrMissingAPIKey indica que nenhuma chave está configurada no ambiente
	ErrMissingAPIKey = errors.New("api key not configured")
	// ErrEmptyReply indica que a resposta não tem candidates[0].content.parts[0].text
	ErrEmptyReply = errors.New("model returned no text")
)

// UpstreamError representa falha de rede ou status não-2xx da API generativa
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options configura o Assistant
type Options struct {
	// APIKey é consultada a cada chamada
	APIKey          func() string
	HTTPClient      *http.Client
	Model           string
	BaseURL         string
	APIVersion      string
	PromptStyle     string
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// OptionsFromConfig monta as opções a partir da configuração carregada
func OptionsFromConfig(cfg *config.Config, httpClient *http.Client) Options {
	return Options{
		APIKey:          cfg.APIKey,
		HTTPClient:      httpClient,
		Model:           cfg.Gemini.Model,
		BaseURL:         cfg.Gemini.BaseURL,
		APIVersion:      cfg.Gemini.APIVersion,
		PromptStyle:     cfg.Chat.PromptStyle,
		Temperature:     cfg.Gemini.Temperature,
		TopK:            cfg.Gemini.TopK,
		TopP:            cfg.Gemini.TopP,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	}
}

// Assistant responde perguntas sobre o negócio usando o modelo generativo.
// Não guarda estado entre chamadas.
type Assistant struct {
	business prompt.Business
	opts     Options
}

// NewAssistant cria uma nova instância do Assistant
func NewAssistant(business prompt.Business, opts Options) *Assistant {
	if opts.APIKey == nil {
		opts.APIKey = func() string { return "" }
	}
	if opts.PromptStyle == "" {
		opts.PromptStyle = config.PromptStylePrimed
	}
	return &Assistant{
		business: business,
		opts:     opts,
	}
}

// Fallback traduz um erro de Reply na mensagem amigável correspondente
func (a *Assistant) Fallback(err error) string {
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		return a.business.Unavailable()
	case errors.Is(err, ErrEmptyReply):
		return a.business.EmptyReply()
	default:
		return a.business.Trouble()
	}
}

// Reply envia a mensagem ao modelo e retorna o texto gerado.
// Faz no máximo uma chamada externa e nunca repete em caso de erro.
func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	key := strings.TrimSpace(a.opts.APIKey())
	if key == "" {
		return "", ErrMissingAPIKey
	}

	contents, err := a.business.Contents(a.opts.PromptStyle, message)
	if err != nil {
		return "", fmt.Errorf("failed to compose prompt: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    a.opts.BaseURL,
			APIVersion: a.opts.APIVersion,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, a.opts.Model, contents, a.generationConfig())
	if err != nil {
		return "", newUpstreamError(err)
	}

	text, ok := extractText(resp)
	if !ok {
		return "", ErrEmptyReply
	}
	return text, nil
}

func (a *Assistant) generationConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: a.opts.MaxOutputTokens,
	}
	if a.opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(a.opts.Temperature)
	}
	if a.opts.TopK > 0 {
		cfg.TopK = genai.Ptr(a.opts.TopK)
	}
	if a.opts.TopP > 0 {
		cfg.TopP = genai.Ptr(a.opts.TopP)
	}
	return cfg
}

// extractText segue candidates[0].content.parts[0].text
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", false
	}
	part := candidate.Content.Parts[0]
	if part == nil || part.Text == "" {
		return "", false
	}
	return part.Text, true
}

func newUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.Code, Err: err}
	}
	return &UpstreamError{Err: err}
}
