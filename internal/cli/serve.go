package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/recall-go/internal/server"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recall HTTP/websocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	manager, cleanup, err := buildManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	port := servePort
	if port == "" {
		port = cfg.ServerPort
	}

	srv := server.New(port, manager, slog.Default())
	return srv.Run(ctx)
}
