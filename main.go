package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/vitormoschetta/go-chatproxy/internal/cli"
	"github.com/vitormoschetta/go-chatproxy/internal/config"
	"github.com/vitormoschetta/go-chatproxy/internal/handler"
	"github.com/vitormoschetta/go-chatproxy/internal/logger"
	"github.com/vitormoschetta/go-chatproxy/internal/prompt"
	"github.com/vitormoschetta/go-chatproxy/internal/server"
	"github.com/vitormoschetta/go-chatproxy/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	if envErr != nil {
		log.Debug().Msg(".env file not found or could not be loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Verificar se deve executar em modo HTTP ou terminal
	if os.Getenv("RUN_HTTP_SERVER") == "true" {
		startHTTPServer(ctx, cfg)
	} else {
		startCLI(ctx, cfg)
	}
}

// startHTTPServer sobe a mesma API servida por cmd/
func startHTTPServer(ctx context.Context, cfg *config.Config) {
	srv := server.NewServer(cfg)
	h := handler.NewHandler(srv)
	srv.SetupRouter(h.HandleRoot, h.HandleHealth, h.HandleChat, h.HandleWidget)

	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// startCLI conversa com o assistente pelo terminal
func startCLI(ctx context.Context, cfg *config.Config) {
	if cfg.APIKey() == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set - replies will fall back to the phone number")
	}

	business := prompt.DefaultBusiness()
	httpClient := server.NewUpstreamClient(cfg.Gemini.Timeout, nil)
	assistant := service.NewAssistant(business, service.OptionsFromConfig(cfg, httpClient))

	if err := cli.Run(ctx, os.Stdin, os.Stdout, assistant, cfg.Chat.MaxMessageLength); err != nil {
		log.Fatal().Err(err).Msg("Terminal session failed")
	}
}
