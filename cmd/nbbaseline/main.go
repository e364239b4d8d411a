package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/samuel/nbbaseline/internal/config"
	"github.com/samuel/nbbaseline/internal/logger"
	"github.com/samuel/nbbaseline/internal/metrics"
	"github.com/samuel/nbbaseline/internal/pipeline"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

// run performs one baseline evaluation and returns the process exit code.
// The score line is the only thing written to stdout.
func run(stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "loading .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load(os.Getenv("NB_CONFIG"))
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)

	m := metrics.New()
	res, err := pipeline.Run(cfg, m)
	if err != nil {
		slog.Error("baseline run failed", "error", err)
		return 1
	}

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Error("writing metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
			return 1
		}
	}

	fmt.Fprintf(stdout, "Baseline NB classifier test score: %0.7f\n", res.Accuracy)
	return 0
}
