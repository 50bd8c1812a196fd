// Command reset erases everything stored for a learner: the readiness
// profile, the retrieval collection and all validation sessions.
//
// Usage:
//
//	reset --learner=l-42
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/app"
	"github.com/heartmarshall/tutor-backend/internal/config"
)

func main() {
	learner := flag.String("learner", "", "learner id to erase")
	flag.Parse()

	if *learner == "" {
		fmt.Fprintln(os.Stderr, "Usage: reset --learner=ID")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	svcs, cleanup, err := app.NewServices(ctx, cfg, logger, st)
	if err != nil {
		logger.Error("build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	if err := svcs.Readiness.Reset(ctx, *learner); err != nil {
		logger.Error("reset profile", slog.String("error", err.Error()))
		os.Exit(1)
	}
	chunks, err := svcs.Retrieval.Clear(ctx, *learner)
	if err != nil {
		logger.Error("clear documents", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sessions, err := svcs.Viva.Clear(ctx, *learner)
	if err != nil {
		logger.Error("clear sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("learner reset",
		slog.String("learner_id", *learner),
		slog.Int("chunks_removed", chunks),
		slog.Int("sessions_removed", sessions),
	)
}
