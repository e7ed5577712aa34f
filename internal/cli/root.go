// Package cli provides the command-line interface for recall.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/raphaelgruber/recall-go/internal/chatbot"
	"github.com/raphaelgruber/recall-go/internal/config"
	"github.com/raphaelgruber/recall-go/internal/db"
	"github.com/raphaelgruber/recall-go/internal/llm"
	"github.com/raphaelgruber/recall-go/internal/retriever"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global config, loaded in PersistentPreRun.
	cfg config.Config

	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Search your past conversations with natural language",
	Long: `Recall answers natural-language questions over your own past
conversation logs. It retrieves the conversation summaries that match your
question, grounds an LLM answer in them, and lists the matching
conversations so you can jump back to them.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()

		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		logCleanup = cleanup
		cobra.OnFinalize(func() {
			if logCleanup != nil {
				_ = logCleanup()
			}
		})

		// slog.Default feeds every package that doesn't take an
		// explicit logger.
		setDefaultLogger(logger)
	},
}

// Execute adds all child commands to the root command and sets flags.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildManager wires the full local pipeline stack: SurrealDB index,
// embedder, generation model, retriever, session manager. The returned
// cleanup closes the database connection.
func buildManager(ctx context.Context) (*chatbot.Manager, func(), error) {
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	cleanup := func() {
		if err := dbClient.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}

	if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("initialize schema: %w", err)
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create embedder: %w", err)
	}

	model, err := llm.NewModel(cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create model: %w", err)
	}

	manager := chatbot.NewManager(chatbot.Deps{
		Generator:      model,
		Retriever:      retriever.New(dbClient, embedder, cfg.RetrievalK, nil),
		MemoryMaxTurns: cfg.MemoryMaxTurns,
		QueryTimeout:   cfg.QueryTimeout,
	})
	return manager, cleanup, nil
}
