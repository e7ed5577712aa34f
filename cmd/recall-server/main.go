// Package main provides the entry point for the recall server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/recall-go/internal/chatbot"
	"github.com/raphaelgruber/recall-go/internal/config"
	"github.com/raphaelgruber/recall-go/internal/db"
	"github.com/raphaelgruber/recall-go/internal/llm"
	"github.com/raphaelgruber/recall-go/internal/retriever"
	"github.com/raphaelgruber/recall-go/internal/server"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Dual output: stderr text + file JSON
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("recall-server starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"llm_provider", cfg.LLMProvider,
		"llm_model", cfg.LLMModel,
		"embed_model", cfg.EmbedModel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(context.Background())
	}()

	if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	logger.Info("embedder initialized", "model", embedder.Model())

	model, err := llm.NewModel(cfg)
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}
	logger.Info("model initialized", "model", model.Model())

	manager := chatbot.NewManager(chatbot.Deps{
		Generator:      model,
		Retriever:      retriever.New(dbClient, embedder, cfg.RetrievalK, logger),
		Logger:         logger,
		MemoryMaxTurns: cfg.MemoryMaxTurns,
		QueryTimeout:   cfg.QueryTimeout,
	})

	srv := server.New(cfg.ServerPort, manager, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
