package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/internal/domain"
	"github.com/yourusername/podfetch-go/pkg/logger"
)

// Job describes one batch of episodes for the download engine
type Job struct {
	RunID     string
	FeedTitle string
	Episodes  []domain.Episode
	OutputDir string
	Mode      domain.FilenameMode
	Workers   int
}

// DownloadEngine downloads episodes with a fixed pool of workers. A file that
// already exists under the target name is never fetched again.
type DownloadEngine struct {
	fetcher domain.MediaFetcher
	config  *domain.DownloadConfig
	logger  *zap.Logger
	log     *logger.LoggerAdapter
	repo    domain.DownloadRepository
	tagger  domain.Tagger
}

// EngineOption configures optional collaborators of the engine
type EngineOption func(*DownloadEngine)

// WithEventLog writes per-episode events to the categorized JSON logs
func WithEventLog(ml *logger.MultiLogger) EngineOption {
	return func(e *DownloadEngine) {
		e.log = logger.NewLoggerAdapter(e.logger, ml)
	}
}

// WithJournal records every outcome in the download journal
func WithJournal(repo domain.DownloadRepository) EngineOption {
	return func(e *DownloadEngine) { e.repo = repo }
}

// WithTagger tags newly downloaded MP3 files
func WithTagger(tagger domain.Tagger) EngineOption {
	return func(e *DownloadEngine) { e.tagger = tagger }
}

// NewDownloadEngine creates a new download engine
func NewDownloadEngine(
	fetcher domain.MediaFetcher,
	config *domain.DownloadConfig,
	log *zap.Logger,
	opts ...EngineOption,
) *DownloadEngine {
	if log == nil {
		log = zap.NewNop()
	}
	if config == nil {
		config = &domain.DefaultConfig().Download
	}
	e := &DownloadEngine{
		fetcher: fetcher,
		config:  config,
		logger:  log,
		log:     logger.NewLoggerAdapter(log, nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes every episode of the job exactly once and returns when all
// workers have found the queue empty or the context has been cancelled.
func (e *DownloadEngine) Run(ctx context.Context, job Job) *RunReport {
	if job.RunID == "" {
		job.RunID = uuid.New().String()
	}
	workers := job.Workers
	if workers < 1 {
		workers = 1
	}

	report := newRunReport(job.RunID, job.FeedTitle)
	queue := NewEpisodeQueue(job.Episodes)

	e.logger.Info("Starting downloads",
		zap.String("run_id", job.RunID),
		zap.Int("episodes", queue.Len()),
		zap.Int("workers", workers),
		zap.String("output_dir", job.OutputDir))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			e.worker(ctx, worker, queue, job, report)
		}(i)
	}
	wg.Wait()

	report.FinishedAt = time.Now()
	return report
}

func (e *DownloadEngine) worker(ctx context.Context, id int, queue *EpisodeQueue, job Job, report *RunReport) {
	for ctx.Err() == nil {
		ep, ok := queue.Pop()
		if !ok {
			return
		}
		report.add(e.ProcessEpisode(ctx, job, ep))
	}
	e.logger.Debug("Worker stopped", zap.Int("worker", id), zap.Error(ctx.Err()))
}

// ProcessEpisode downloads a single episode into job.OutputDir
func (e *DownloadEngine) ProcessEpisode(ctx context.Context, job Job, ep domain.Episode) DownloadResult {
	target := filepath.Join(job.OutputDir, domain.Filename(ep, job.Mode))
	result := DownloadResult{Episode: ep, Path: target}

	fields := []zap.Field{
		zap.String("run_id", job.RunID),
		zap.String("title", ep.Title()),
		zap.String("url", ep.AudioURL().String()),
		zap.String("path", target),
	}

	// O_EXCL makes the existence check and the creation one step, so two
	// workers racing for the same name cannot both download it
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		result.Status = domain.StatusSkipped
		e.logger.Info("Skipping episode, file already exists", fields...)
		e.log.Event("episode_skipped", fields...)
		e.journal(job, result)
		return result
	}
	if err != nil {
		return e.fail(job, result, fmt.Errorf("failed to create %s: %w", target, err), fields)
	}

	e.logger.Info("Downloading episode", fields...)

	written, err := e.fetchInto(ctx, ep, file, fields)
	result.BytesWritten = written
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", target, closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(target); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			e.logger.Warn("Failed to remove partial file", append(fields, zap.Error(rmErr))...)
		}
		return e.fail(job, result, err, fields)
	}

	result.Status = domain.StatusDownloaded
	e.logger.Info("Downloaded episode", append(fields, zap.Int64("bytes", written))...)
	e.log.Event("episode_downloaded", append(fields, zap.Int64("bytes", written))...)

	if e.tagger != nil && ep.MediaKind() == domain.MediaMP3 {
		if err := e.tagger.Tag(target, ep, job.FeedTitle); err != nil {
			e.logger.Warn("Failed to tag episode", append(fields, zap.Error(err))...)
		}
	}

	e.journal(job, result)
	return result
}

// fetchInto streams the episode media into w and returns the number of bytes written
func (e *DownloadEngine) fetchInto(ctx context.Context, ep domain.Episode, w io.Writer, fields []zap.Field) (int64, error) {
	if e.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.RequestTimeout)
		defer cancel()
	}

	resp, err := e.fetcher.Fetch(ctx, ep.AudioURL().String())
	if err != nil {
		return 0, fmt.Errorf("failed to fetch episode: %w", err)
	}
	defer resp.Body.Close()

	expected := ep.DeclaredSize()
	if resp.ContentLength >= 0 {
		if resp.ContentLength != expected {
			e.sizeMismatch("Content-Length differs from declared enclosure size", fields,
				zap.Int64("declared", expected),
				zap.Int64("content_length", resp.ContentLength))
		}
		expected = resp.ContentLength
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to write episode after %d bytes: %w", written, err)
	}

	if written != expected {
		e.sizeMismatch("Downloaded size differs from expected size", fields,
			zap.Int64("expected", expected),
			zap.Int64("written", written))
	}
	return written, nil
}

func (e *DownloadEngine) sizeMismatch(msg string, fields []zap.Field, extra ...zap.Field) {
	all := append(append([]zap.Field{}, fields...), extra...)
	e.logger.Warn(msg, all...)
	e.log.Event("size_mismatch", all...)
}

func (e *DownloadEngine) fail(job Job, result DownloadResult, err error, fields []zap.Field) DownloadResult {
	result.Status = domain.StatusFailed
	result.Err = err
	e.logger.Error("Failed to download episode", append(fields, zap.Error(err))...)
	e.log.Failure("episode_failed", append(fields, zap.Error(err))...)
	e.journal(job, result)
	return result
}

func (e *DownloadEngine) journal(job Job, result DownloadResult) {
	if e.repo == nil {
		return
	}

	record := domain.NewDownloadRecord(job.RunID, job.FeedTitle, result.Episode, result.Path)
	switch result.Status {
	case domain.StatusDownloaded:
		record.MarkDownloaded(result.BytesWritten)
	case domain.StatusSkipped:
		record.MarkSkipped()
	default:
		record.MarkFailed(result.Err)
	}

	if err := e.repo.Create(record); err != nil {
		e.logger.Warn("Failed to write journal entry",
			zap.String("title", result.Episode.Title()),
			zap.Error(err))
	}
}
