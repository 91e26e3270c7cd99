package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/internal/domain"
	"github.com/yourusername/podfetch-go/pkg/logger"
)

// RunRequest describes one invocation of the downloader
type RunRequest struct {
	Source    domain.FeedSource
	OutputDir string
	Mode      domain.FilenameMode
	Workers   int
	KeepFeed  bool
}

// Runner wires loading, parsing, extraction, archiving and downloading into one run
type Runner struct {
	loader   domain.FeedLoader
	parser   domain.FeedParser
	engine   *DownloadEngine
	logger   *zap.Logger
	log      *logger.LoggerAdapter
	notifier domain.Notifier
}

// RunnerOption configures optional collaborators of the runner
type RunnerOption func(*Runner)

// WithRunEventLog writes run_started/run_finished to the JSON event logs
func WithRunEventLog(ml *logger.MultiLogger) RunnerOption {
	return func(r *Runner) { r.log = logger.NewLoggerAdapter(r.logger, ml) }
}

// WithNotifier announces completed runs
func WithNotifier(n domain.Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// NewRunner creates a new runner
func NewRunner(
	loader domain.FeedLoader,
	parser domain.FeedParser,
	engine *DownloadEngine,
	log *zap.Logger,
	opts ...RunnerOption,
) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		loader: loader,
		parser: parser,
		engine: engine,
		logger: log,
		log:    logger.NewLoggerAdapter(log, nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one download run. The returned error is set only for failures
// that happen before any episode is attempted; per-episode problems are in the report.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	if req.Workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", req.Workers)
	}

	if err := PrepareOutputDir(req.OutputDir); err != nil {
		return nil, err
	}

	raw, err := r.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed %s: %w", req.Source.Location(), err)
	}

	feed, err := r.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", req.Source.Location(), err)
	}

	runID := uuid.New().String()
	r.logger.Info("Loaded feed",
		zap.String("run_id", runID),
		zap.String("title", feed.Title),
		zap.String("type", feed.FeedType),
		zap.Int("items", len(feed.Items)))
	r.log.Event("run_started",
		zap.String("run_id", runID),
		zap.String("feed", feed.Title),
		zap.String("source", req.Source.String()))

	episodes, failures := domain.ExtractAll(feed.Items)
	for _, err := range failures {
		r.logger.Warn("Skipping feed item", zap.Error(err))
	}

	var (
		archiveWg   sync.WaitGroup
		archivePath string
	)
	if req.KeepFeed {
		archiver := NewFeedArchiver(req.OutputDir, r.logger)
		archiveWg.Add(1)
		go func() {
			defer archiveWg.Done()
			path, err := archiver.Archive(raw, feed)
			if err != nil {
				r.logger.Warn("Failed to archive feed", zap.Error(err))
				return
			}
			archivePath = path
		}()
	}

	report := r.engine.Run(ctx, Job{
		RunID:     runID,
		FeedTitle: feed.Title,
		Episodes:  episodes,
		OutputDir: req.OutputDir,
		Mode:      req.Mode,
		Workers:   req.Workers,
	})
	archiveWg.Wait()

	report.ExtractionFailures = failures
	report.ArchivePath = archivePath

	r.summarize(report)
	return report, nil
}

func (r *Runner) summarize(report *RunReport) {
	fields := []zap.Field{
		zap.String("run_id", report.RunID),
		zap.String("feed", report.FeedTitle),
		zap.Int("downloaded", report.Downloaded()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("failed", report.Failed()),
		zap.Int("invalid_items", len(report.ExtractionFailures)),
		zap.Duration("duration", report.Duration().Round(time.Millisecond)),
	}
	r.logger.Info("Run finished", fields...)
	r.log.Event("run_finished", fields...)

	if r.notifier != nil {
		if err := r.notifier.NotifyRunCompleted(report.FeedTitle, report.Downloaded(), report.Skipped(), report.Failed()); err != nil {
			r.logger.Warn("Failed to send notification", zap.Error(err))
		}
	}
}

// PrepareOutputDir makes sure dir exists and is a directory
func PrepareOutputDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("output path %s exists and is not a directory", dir)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to access output directory: %w", err)
	}
}
