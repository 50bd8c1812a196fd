// Command ingest adds a document to a learner's retrieval collection.
//
// Usage:
//
//	ingest --learner=l-42 --file=notes.md [--type=notes] [--source=lecture-3]
//
// Reads the same configuration as the server (CONFIG_PATH, .env, ENV).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/app"
	"github.com/heartmarshall/tutor-backend/internal/config"
	"github.com/heartmarshall/tutor-backend/internal/service/retrieval"
)

func main() {
	learner := flag.String("learner", "", "learner id owning the collection")
	file := flag.String("file", "", "path of the document to ingest")
	docType := flag.String("type", "", "document type stored in chunk metadata")
	source := flag.String("source", "", "document source; defaults to the file name")
	flag.Parse()

	if *learner == "" || *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingest --learner=ID --file=PATH [--type=TYPE] [--source=NAME]")
		os.Exit(1)
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	if *source == "" {
		*source = filepath.Base(*file)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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

	res, err := svcs.Retrieval.Ingest(ctx, retrieval.IngestInput{
		LearnerID: *learner,
		Content:   string(content),
		Type:      *docType,
		Source:    *source,
	})
	if err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Ingested %d chunks for learner %q.\n", res.ChunksCreated, *learner)
}
