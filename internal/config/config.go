package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Estilos de montagem da conversa enviada ao modelo
const (
	PromptStyleInline = "inline"
	PromptStylePrimed = "primed"
)

// Config agrega todas as configurações do serviço
type Config struct {
	Server ServerConfig
	Gemini GeminiConfig
	Chat   ChatConfig
	Log    LogConfig

	v *viper.Viper
}

// ServerConfig descreve o servidor HTTP
type ServerConfig struct {
	Addr            string
	CORSAllowOrigin string
	StaticDir       string
}

// GeminiConfig descreve o acesso à API generativa
type GeminiConfig struct {
	Model           string
	BaseURL         string
	APIVersion      string
	Timeout         time.Duration
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// ChatConfig descreve as regras do endpoint de chat
type ChatConfig struct {
	PromptStyle      string
	MaxMessageLength int
}

// LogConfig descreve o logger
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load lê a configuração de config.yaml (opcional) e das variáveis de ambiente
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "8080")
	v.SetDefault("server.cors_allow_origin", "*")
	v.SetDefault("server.static_dir", "")

	v.SetDefault("gemini.model", "gemma-3-27b-it")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.api_version", "v1beta")
	v.SetDefault("gemini.timeout", "30s")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_k", 40)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.max_output_tokens", 200)

	v.SetDefault("chat.prompt_style", PromptStylePrimed)
	v.SetDefault("chat.max_message_length", 2000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.addr", "APP_ADDR", "PORT")
	v.BindEnv("server.cors_allow_origin", "CORS_ALLOW_ORIGIN")
	v.BindEnv("server.static_dir", "STATIC_DIR")

	// O nome API_KEY_WILLOWS vem do worker de borda original
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "API_KEY_WILLOWS")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	v.BindEnv("gemini.api_version", "GEMINI_API_VERSION")
	v.BindEnv("gemini.timeout", "GEMINI_TIMEOUT")
	v.BindEnv("gemini.temperature", "GEMINI_TEMPERATURE")
	v.BindEnv("gemini.top_k", "GEMINI_TOP_K")
	v.BindEnv("gemini.top_p", "GEMINI_TOP_P")
	v.BindEnv("gemini.max_output_tokens", "GEMINI_MAX_OUTPUT_TOKENS")

	v.BindEnv("chat.prompt_style", "CHAT_PROMPT_STYLE")
	v.BindEnv("chat.max_message_length", "CHAT_MAX_MESSAGE_LENGTH")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.pretty", "LOG_PRETTY")
}

func fromViper(v *viper.Viper) (*Config, error) {
	addr, err := normalizeAddr(v.GetString("server.addr"))
	if err != nil {
		return nil, err
	}

	style := strings.ToLower(strings.TrimSpace(v.GetString("chat.prompt_style")))
	if style != PromptStyleInline && style != PromptStylePrimed {
		return nil, fmt.Errorf("invalid CHAT_PROMPT_STYLE value %q: want %q or %q", style, PromptStyleInline, PromptStylePrimed)
	}

	maxLen := v.GetInt("chat.max_message_length")
	if maxLen < 1 {
		return nil, fmt.Errorf("invalid CHAT_MAX_MESSAGE_LENGTH value %d: must be positive", maxLen)
	}

	timeout := v.GetDuration("gemini.timeout")
	if timeout < 0 {
		return nil, fmt.Errorf("invalid GEMINI_TIMEOUT value %s: must not be negative", timeout)
	}

	model := strings.TrimSpace(v.GetString("gemini.model"))
	if model == "" {
		return nil, errors.New("GEMINI_MODEL must not be empty")
	}

	return &Config{
		Server: ServerConfig{
			Addr:            addr,
			CORSAllowOrigin: v.GetString("server.cors_allow_origin"),
			StaticDir:       strings.TrimSpace(v.GetString("server.static_dir")),
		},
		Gemini: GeminiConfig{
			Model:           model,
			BaseURL:         strings.TrimSpace(v.GetString("gemini.base_url")),
			APIVersion:      strings.TrimSpace(v.GetString("gemini.api_version")),
			Timeout:         timeout,
			Temperature:     float32(v.GetFloat64("gemini.temperature")),
			TopK:            float32(v.GetFloat64("gemini.top_k")),
			TopP:            float32(v.GetFloat64("gemini.top_p")),
			MaxOutputTokens: v.GetInt32("gemini.max_output_tokens"),
		},
		Chat: ChatConfig{
			PromptStyle:      style,
			MaxMessageLength: maxLen,
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
		v: v,
	}, nil
}

// APIKey lê a chave da API no momento da chamada; ela nunca é guardada na struct
func (c *Config) APIKey() string {
	if c == nil || c.v == nil {
		return ""
	}
	return strings.TrimSpace(c.v.GetString("gemini.api_key"))
}

// normalizeAddr aceita "8080", ":8080" ou "127.0.0.1:8080"
func normalizeAddr(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	if strings.Contains(port, ":") {
		return port, nil
	}
	return ":" + port, nil
}
