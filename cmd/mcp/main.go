// Command mcp serves the tutoring tools to an MCP client over stdio.
//
// Usage:
//
//	mcp --learner=l-42
//
// Reads the same configuration as the server (CONFIG_PATH, .env, ENV).
// Stdout carries the protocol, so all logging goes to stderr. The sqlite
// storage driver is the usual choice for a local install.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/heartmarshall/tutor-backend/internal/app"
	"github.com/heartmarshall/tutor-backend/internal/config"
	"github.com/heartmarshall/tutor-backend/internal/transport/mcptools"
)

func main() {
	learner := flag.String("learner", "", "learner id the tools act for")
	flag.Parse()

	if *learner == "" {
		fmt.Fprintln(os.Stderr, "Usage: mcp --learner=ID")
		os.Exit(1)
	}

	if err := run(*learner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(learner string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	svcs, cleanup, err := app.NewServices(ctx, cfg, logger, st)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer cleanup()

	s := mcptools.NewServer(app.Version, learner, mcptools.Services{
		Router:    svcs.Router,
		Readiness: svcs.Readiness,
		Retrieval: svcs.Retrieval,
		Viva:      svcs.Viva,
	})

	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	logger.Info("mcp server listening on stdio",
		slog.String("learner_id", learner),
		slog.String("storage", cfg.Storage.Driver),
	)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
