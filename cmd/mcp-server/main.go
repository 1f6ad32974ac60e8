// mcp-server exposes the symsolve tools and question answering over HTTP
// for agent frameworks.
//
// Usage:
//
//	mcp-server --config symsolve.yaml --addr :8080
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/symsolve/agent"
	"github.com/njchilds90/symsolve/internal/config"
	"github.com/njchilds90/symsolve/internal/server"
)

var (
	configPath string
	addr       string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Serve the symsolve tool API over HTTP",
	Long: `Serves the symsolve tools for agent registration:
  POST /tool   execute a tool call
  POST /ask    answer a natural-language math question
  GET  /schema tool schema
  GET  /health liveness check`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "symsolve.yaml", "Path to the YAML configuration")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := cfg.BuildLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a := agent.New(
		agent.WithLogger(logger.Named("agent")),
		agent.WithConfidences(cfg.Confidence),
		agent.WithConcurrency(cfg.Batch.Concurrency),
	)
	srv := server.New(cfg.Server, a, logger.Named("server"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
