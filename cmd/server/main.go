package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liftassist-backend/internal/assistant"
	"liftassist-backend/internal/catalog"
	"liftassist-backend/internal/config"
	"liftassist-backend/internal/handlers"
	"liftassist-backend/internal/router"
	"liftassist-backend/internal/services"
	"liftassist-backend/internal/tools"
	logx "liftassist-backend/pkg/logger"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logx.Init(cfg.Env)
	logx.Info().Str("env", cfg.Env).Msg("environment loaded")

	// ──── Step 2: Load Product Catalog ────
	cat, err := catalog.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("product catalog load failed")
	}
	logx.Info().Int("products", len(cat.All())).Msg("product catalog loaded")

	// ──── Step 3: Initialize Assistant Client ────
	client := assistant.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIBetaHeader)
	logx.Info().Str("base_url", cfg.OpenAIBaseURL).Msg("assistant client initialized")

	// ──── Initialize Services ────
	registry := tools.NewRegistry(cat)
	orchestrator := services.NewOrchestrator(client, registry, cfg.OpenAIAssistantID, cfg.PollInterval, cfg.PollMaxAttempts)
	assembler := services.NewAssembler(client)
	uploader := services.NewUploader(client)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(orchestrator, assembler, uploader, client)
	productsHandler := handlers.NewProductsHandler(cat)

	// ──── Start HTTP Server ────
	r := router.New(chatHandler, productsHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logx.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logx.Info().Str("port", cfg.Port).Msg("forklift assistant backend ready")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logx.Fatal().Err(err).Msg("server error")
	}
}
