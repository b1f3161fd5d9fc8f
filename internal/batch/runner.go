// Package batch converts a directory of call exports into one CSV table.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/mangoconv/internal/export"
	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
	"github.com/MikeSquared-Agency/mangoconv/internal/source"
)

// DefaultWorkers is used when Config.Workers is not positive.
const DefaultWorkers = 4

// Config holds the convert command configuration.
type Config struct {
	Input      string // file or directory
	Output     string // CSV path
	Recursive  bool
	Workers    int
	View       export.View // default merged
	ReportPath string      // default next to Output
}

// Runner orchestrates a conversion run.
type Runner struct {
	cfg    Config
	svc    *ingest.Service
	logger *slog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(cfg Config, svc *ingest.Service, logger *slog.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.View == "" {
		cfg.View = export.ViewMerged
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = DefaultReportPath(cfg.Output)
	}
	return &Runner{cfg: cfg, svc: svc, logger: logger}
}

// Run parses every call export under the input path and writes the CSV and
// the run report. A file that fails is recorded in the report and does not
// stop the run. No CSV is written when nothing parsed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	files, err := source.Discover(r.cfg.Input, r.cfg.Recursive)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	report := &Report{
		RunID:      uuid.New().String(),
		StartedAt:  time.Now().UTC(),
		Input:      r.cfg.Input,
		View:       string(r.cfg.View),
		FilesFound: len(files),
		Processed:  []string{},
		Failed:     []FileError{},
	}

	r.logger.Info("files discovered", "run_id", report.RunID, "input", r.cfg.Input, "files", len(files))

	calls, errs := r.parseAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	var parsed []export.Call
	for i, path := range files {
		if errs[i] != nil {
			r.logger.Warn("failed to parse file", "path", path, "error", errs[i])
			report.AddError(path, errs[i])
			continue
		}
		report.AddProcessed(path, len(calls[i].Result.Turns))
		parsed = append(parsed, export.Call{Name: calls[i].Name, Result: calls[i].Result})
	}

	if len(parsed) > 0 {
		if err := r.writeCSV(parsed); err != nil {
			return nil, err
		}
		report.Output = r.cfg.Output
	} else {
		r.logger.Warn("no call exports parsed, nothing written", "input", r.cfg.Input)
	}

	report.CompletedAt = time.Now().UTC()
	if err := report.Save(r.cfg.ReportPath); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	r.logger.Info("conversion complete",
		"run_id", report.RunID,
		"parsed", report.FilesParsed,
		"failed", report.FilesFailed,
		"turns", report.Turns,
		"output", report.Output,
	)
	return report, nil
}

// parseAll parses files on a bounded pool. Results keep the input order.
func (r *Runner) parseAll(ctx context.Context, files []string) ([]*ingest.Call, []error) {
	calls := make([]*ingest.Call, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			calls[i], errs[i] = r.svc.ParseFile(gctx, ingest.SurfaceBatch, path)
			return nil
		})
	}
	_ = g.Wait()
	return calls, errs
}

func (r *Runner) writeCSV(calls []export.Call) error {
	if err := os.MkdirAll(filepath.Dir(r.cfg.Output), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.Create(r.cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(f, r.cfg.View, calls); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", r.cfg.Output, err)
	}
	return f.Close()
}
