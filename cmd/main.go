package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/vitormoschetta/go-chatproxy/internal/config"
	"github.com/vitormoschetta/go-chatproxy/internal/handler"
	"github.com/vitormoschetta/go-chatproxy/internal/logger"
	"github.com/vitormoschetta/go-chatproxy/internal/server"
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

	// Criar servidor
	srv := server.NewServer(cfg)

	// Criar handlers
	h := handler.NewHandler(srv)

	// Configurar rotas com os handlers
	srv.SetupRouter(h.HandleRoot, h.HandleHealth, h.HandleChat, h.HandleWidget)

	// Iniciar servidor
	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
