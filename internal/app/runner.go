// Package app runs an example match request end to end: configuration,
// client construction, the request itself and printing of the results.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/osmatch/internal/adapters/matchapi"
	"github.com/okian/osmatch/internal/config"
	"github.com/okian/osmatch/internal/domain/model"
	"github.com/okian/osmatch/internal/domain/projection"
	"github.com/okian/osmatch/internal/examples"
	"github.com/okian/osmatch/pkg/logger"
	"github.com/okian/osmatch/pkg/metrics"
	"github.com/okian/osmatch/pkg/printer"
)

const pushTimeout = 5 * time.Second

// Matcher is the part of the match client the runner needs.
type Matcher interface {
	Match(ctx context.Context, queries model.Queries, opts ...matchapi.MatchOption) (*model.MatchResponse, error)
}

// Run sends the example's queries in one request and prints each query's
// candidates in the example's key order. A heading precedes each query's
// output when the example has more than one query.
func Run(ctx context.Context, m Matcher, ex examples.Example, p *printer.Printer) error {
	var opts []matchapi.MatchOption
	if ex.Algorithm != "" {
		opts = append(opts, matchapi.WithAlgorithm(ex.Algorithm))
	}

	resp, err := m.Match(ctx, ex.Queries, opts...)
	if err != nil {
		return fmt.Errorf("match %s: %w", ex.Name, err)
	}

	keys := ex.Keys()
	for _, key := range keys {
		if len(keys) > 1 {
			if err := p.Heading("Results for query %s:", key); err != nil {
				return err
			}
		}
		rows, err := render(ex.View, resp.Responses[key])
		if err != nil {
			var shapeErr *model.DataShapeError
			if errors.As(err, &shapeErr) {
				shapeErr.Query = key
			}
			return fmt.Errorf("match %s: %w", ex.Name, err)
		}
		if err := p.JSON(rows); err != nil {
			return err
		}
	}
	return nil
}

// render shapes one query's results for printing. The raw view prints the
// service's objects untouched when they are available.
func render(view examples.View, qr model.QueryResponse) (any, error) {
	switch view {
	case examples.ViewProjection:
		return projection.Project(qr.Results)
	case examples.ViewSummary:
		return projection.Summarize(qr.Results)
	default:
		if qr.Raw != nil {
			return qr.Raw, nil
		}
		return qr.Results, nil
	}
}

// Execute builds a client from cfg and runs ex, writing results to out.
func Execute(ctx context.Context, cfg *config.Config, ex examples.Example, out io.Writer, opts ...matchapi.Option) error {
	client, err := matchapi.NewFromConfig(cfg, opts...)
	if err != nil {
		return err
	}
	return Run(ctx, client, ex, printer.New(out, printer.WithColor(isTerminal(out))))
}

// Main is the body of every example command: it runs the example called name
// and returns the process exit code.
func Main(name string) int {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	ex, err := examples.Lookup(name)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + " (available: " + strings.Join(exampleNames(), ", ") + ")\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	log.Debug(ctx, "running example",
		logger.String("example", ex.Name),
		logger.String("description", ex.Description),
		logger.String("dataset", cfg.Dataset),
		logger.String("algorithm", ex.Algorithm))

	runErr := Execute(ctx, cfg, ex, os.Stdout, matchapi.WithLogger(logger.Named("matchapi")))

	pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := metrics.Default().Push(pushCtx, cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
		log.Warn(ctx, "failed to push metrics", logger.String("url", cfg.PushgatewayURL), logger.Error(err))
	}

	if runErr != nil {
		os.Stderr.WriteString("Error: " + runErr.Error() + "\n")
		return 1
	}
	return 0
}

func exampleNames() []string {
	all := examples.All()
	names := make([]string, len(all))
	for i, ex := range all {
		names[i] = ex.Name
	}
	return names
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
