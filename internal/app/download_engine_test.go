package app

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/podfetch-go/internal/domain"
	"github.com/yourusername/podfetch-go/internal/infrastructure"
	"github.com/yourusername/podfetch-go/pkg/logger"
)

func newTestEngine(fetcher domain.MediaFetcher, opts ...EngineOption) *DownloadEngine {
	return NewDownloadEngine(fetcher, &domain.DownloadConfig{}, zap.NewNop(), opts...)
}

func tenEpisodes(t *testing.T, fetcher *fakeFetcher) []domain.Episode {
	var episodes []domain.Episode
	for i := 0; i < 10; i++ {
		url := fmt.Sprintf("https://cdn.example.com/ep-%d.mp3", i)
		body := bytes.Repeat([]byte{byte(i)}, 100+i)
		fetcher.serve(url, body)
		episodes = append(episodes, makeEpisode(t, fmt.Sprintf("Episode %d", i), url, len(body)))
	}
	return episodes
}

func TestDownloadEngine_EachEpisodeExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	episodes := tenEpisodes(t, fetcher)

	report := newTestEngine(fetcher).Run(context.Background(), Job{
		Episodes:  episodes,
		OutputDir: dir,
		Mode:      domain.FilenameDateTitle,
		Workers:   3,
	})

	assert.Len(t, report.Results, 10)
	assert.Equal(t, 10, report.Downloaded())
	assert.Equal(t, 0, report.Failed())
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, fetcher.count(fmt.Sprintf("https://cdn.example.com/ep-%d.mp3", i)))

		data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("2024-01-01 - Episode %d.mp3", i)))
		require.NoError(t, err)
		assert.Len(t, data, 100+i)
	}
}

func TestDownloadEngine_SecondRunSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	episodes := tenEpisodes(t, fetcher)
	engine := newTestEngine(fetcher)
	job := Job{Episodes: episodes, OutputDir: dir, Mode: domain.FilenameRemote, Workers: 4}

	first := engine.Run(context.Background(), job)
	require.Equal(t, 10, first.Downloaded())

	second := engine.Run(context.Background(), job)
	assert.Equal(t, 0, second.Downloaded())
	assert.Equal(t, 10, second.Skipped())
	assert.Equal(t, 10, fetcher.total())
}

func TestDownloadEngine_ExistingFileIsNotTouched(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/audio/show-42.mp3", []byte("new content"))
	ep := makeEpisode(t, "Episode #1: Intro", "https://cdn.example.com/audio/show-42.mp3", 11)

	target := filepath.Join(dir, "2024-01-01 - Episode #1 Intro.mp3")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	result := newTestEngine(fetcher).ProcessEpisode(context.Background(), Job{OutputDir: dir}, ep)

	assert.Equal(t, domain.StatusSkipped, result.Status)
	assert.Equal(t, 0, fetcher.total())
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestDownloadEngine_ContentLengthMismatchWarns(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.WarnLevel)
	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/audio/show-42.mp3", bytes.Repeat([]byte("a"), 500))
	ep := makeEpisode(t, "Episode #1: Intro", "https://cdn.example.com/audio/show-42.mp3", 1000)

	engine := NewDownloadEngine(fetcher, &domain.DownloadConfig{}, zap.New(core))
	result := engine.ProcessEpisode(context.Background(), Job{OutputDir: dir}, ep)

	assert.Equal(t, domain.StatusDownloaded, result.Status)
	assert.Equal(t, int64(500), result.BytesWritten)

	warnings := logs.FilterMessage("Content-Length differs from declared enclosure size").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(1000), warnings[0].ContextMap()["declared"])
	assert.Equal(t, int64(500), warnings[0].ContextMap()["content_length"])

	data, err := os.ReadFile(filepath.Join(dir, "2024-01-01 - Episode #1 Intro.mp3"))
	require.NoError(t, err)
	assert.Len(t, data, 500)
}

func TestDownloadEngine_HugeDeclaredSizeIsNotNegative(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/huge.mp3", []byte("tiny"))
	ep, err := domain.Extract(domain.FeedItem{
		Title:     "Huge",
		Enclosure: &domain.Enclosure{URL: "https://cdn.example.com/huge.mp3", Length: "18446744073709551615", Type: "audio/mpeg"},
		Published: "Mon, 01 Jan 2024 00:00:00 +0000",
	})
	require.NoError(t, err)

	engine := NewDownloadEngine(fetcher, &domain.DownloadConfig{}, zap.New(core))
	result := engine.ProcessEpisode(context.Background(), Job{OutputDir: t.TempDir()}, ep)

	assert.Equal(t, domain.StatusDownloaded, result.Status)
	warnings := logs.FilterMessage("Content-Length differs from declared enclosure size").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(math.MaxInt64), warnings[0].ContextMap()["declared"])
}

func TestDownloadEngine_RequestTimeoutFailsHungEpisode(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hung.mp3" {
			w.Write([]byte("good"))
			return
		}
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	dir := t.TempDir()
	fetcher := infrastructure.NewHTTPMediaFetcher(infrastructure.NewHTTPClient(0), "")
	engine := NewDownloadEngine(fetcher, &domain.DownloadConfig{RequestTimeout: 200 * time.Millisecond}, zap.NewNop())

	// one worker pops from the back, so the hung episode blocks the good one until it times out
	episodes := []domain.Episode{
		makeEpisode(t, "Good", server.URL+"/good.mp3", 4),
		makeEpisode(t, "Hung", server.URL+"/hung.mp3", 100),
	}

	start := time.Now()
	report := engine.Run(context.Background(), Job{
		Episodes: episodes, OutputDir: dir, Mode: domain.FilenameRemote, Workers: 1,
	})
	assert.Less(t, time.Since(start), 5*time.Second)

	statuses := map[string]domain.DownloadStatus{}
	for _, res := range report.Results {
		statuses[res.Episode.Title()] = res.Status
	}
	assert.Equal(t, domain.StatusFailed, statuses["Hung"])
	assert.Equal(t, domain.StatusDownloaded, statuses["Good"])

	assert.NoFileExists(t, filepath.Join(dir, "hung.mp3"))
	data, err := os.ReadFile(filepath.Join(dir, "good.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))
}

func TestDownloadEngine_WrittenSizeMismatchWithoutHeader(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fetcher := newFakeFetcher()
	fetcher.media["https://cdn.example.com/a.mp3"] = fakeMedia{body: []byte("short"), contentLength: -1}
	ep := makeEpisode(t, "A", "https://cdn.example.com/a.mp3", 10)

	engine := NewDownloadEngine(fetcher, &domain.DownloadConfig{}, zap.New(core))
	result := engine.ProcessEpisode(context.Background(), Job{OutputDir: t.TempDir()}, ep)

	assert.Equal(t, domain.StatusDownloaded, result.Status)
	assert.Equal(t, 1, logs.FilterMessage("Downloaded size differs from expected size").Len())
}

func TestDownloadEngine_FailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/good.mp3", []byte("good"))
	fetcher.media["https://cdn.example.com/broken.mp3"] = fakeMedia{
		body: bytes.Repeat([]byte("b"), 50), contentLength: 50, failAfter: 10,
	}

	episodes := []domain.Episode{
		makeEpisode(t, "Good", "https://cdn.example.com/good.mp3", 4),
		makeEpisode(t, "Broken", "https://cdn.example.com/broken.mp3", 50),
		makeEpisode(t, "Missing", "https://cdn.example.com/missing.mp3", 1),
	}

	report := newTestEngine(fetcher).Run(context.Background(), Job{
		Episodes: episodes, OutputDir: dir, Mode: domain.FilenameRemote, Workers: 2,
	})

	assert.Equal(t, 1, report.Downloaded())
	assert.Equal(t, 2, report.Failed())
	assert.FileExists(t, filepath.Join(dir, "good.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "broken.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "missing.mp3"))

	for _, res := range report.Results {
		if res.Status == domain.StatusFailed {
			assert.Error(t, res.Err)
		}
	}
}

func TestDownloadEngine_FailedEpisodeIsRetriedNextRun(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	fetcher.media["https://cdn.example.com/flaky.mp3"] = fakeMedia{
		body: []byte("0123456789"), contentLength: 10, failAfter: 5,
	}
	ep := makeEpisode(t, "Flaky", "https://cdn.example.com/flaky.mp3", 10)
	engine := newTestEngine(fetcher)
	job := Job{OutputDir: dir, Mode: domain.FilenameRemote}

	assert.Equal(t, domain.StatusFailed, engine.ProcessEpisode(context.Background(), job, ep).Status)

	fetcher.serve("https://cdn.example.com/flaky.mp3", []byte("0123456789"))
	assert.Equal(t, domain.StatusDownloaded, engine.ProcessEpisode(context.Background(), job, ep).Status)
}

func TestDownloadEngine_DuplicateNamesDownloadOnce(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	fetcher.serve("https://a.example.com/x/show.mp3", []byte("a"))
	fetcher.serve("https://b.example.com/y/show.mp3", []byte("b"))

	report := newTestEngine(fetcher).Run(context.Background(), Job{
		Episodes: []domain.Episode{
			makeEpisode(t, "One", "https://a.example.com/x/show.mp3", 1),
			makeEpisode(t, "Two", "https://b.example.com/y/show.mp3", 1),
		},
		OutputDir: dir,
		Mode:      domain.FilenameRemote,
		Workers:   2,
	})

	assert.Equal(t, 1, report.Downloaded())
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, 1, fetcher.total())
}

func TestDownloadEngine_CancelledContextStopsWorkers(t *testing.T) {
	fetcher := newFakeFetcher()
	episodes := tenEpisodes(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := newTestEngine(fetcher).Run(ctx, Job{Episodes: episodes, OutputDir: t.TempDir(), Workers: 3})

	assert.Empty(t, report.Results)
	assert.Equal(t, 0, fetcher.total())
}

func TestDownloadEngine_JournalAndTagger(t *testing.T) {
	dir := t.TempDir()
	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/a.mp3", []byte("aaaa"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mp3"), []byte("old"), 0644))
	fetcher.serve("https://cdn.example.com/b.mp3", []byte("bbbb"))

	journal := &mockJournal{}
	tagger := &fakeTagger{}
	engine := newTestEngine(fetcher, WithJournal(journal), WithTagger(tagger))

	report := engine.Run(context.Background(), Job{
		RunID:     "run-42",
		FeedTitle: "My Show",
		Episodes: []domain.Episode{
			makeEpisode(t, "A", "https://cdn.example.com/a.mp3", 4),
			makeEpisode(t, "B", "https://cdn.example.com/b.mp3", 4),
		},
		OutputDir: dir,
		Mode:      domain.FilenameRemote,
		Workers:   1,
	})

	assert.Equal(t, "run-42", report.RunID)
	records, err := journal.FindByRun("run-42")
	require.NoError(t, err)
	require.Len(t, records, 2)

	downloaded, _ := journal.CountByStatus(domain.StatusDownloaded)
	skipped, _ := journal.CountByStatus(domain.StatusSkipped)
	assert.Equal(t, int64(1), downloaded)
	assert.Equal(t, int64(1), skipped)

	assert.Equal(t, []string{filepath.Join(dir, "a.mp3")}, tagger.paths)
}

func TestDownloadEngine_JournalErrorDoesNotFailEpisode(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/a.mp3", []byte("aaaa"))
	ep := makeEpisode(t, "A", "https://cdn.example.com/a.mp3", 4)

	engine := newTestEngine(fetcher, WithJournal(&mockJournal{err: assert.AnError}))
	result := engine.ProcessEpisode(context.Background(), Job{OutputDir: t.TempDir()}, ep)

	assert.Equal(t, domain.StatusDownloaded, result.Status)
}

func TestDownloadEngine_EventLog(t *testing.T) {
	logsDir := t.TempDir()
	ml, err := logger.NewMultiLogger(logger.MultiLoggerConfig{LogsDir: logsDir})
	require.NoError(t, err)

	fetcher := newFakeFetcher()
	fetcher.serve("https://cdn.example.com/a.mp3", []byte("aaaa"))
	engine := newTestEngine(fetcher, WithEventLog(ml))

	engine.Run(context.Background(), Job{
		Episodes: []domain.Episode{
			makeEpisode(t, "A", "https://cdn.example.com/a.mp3", 4),
			makeEpisode(t, "Gone", "https://cdn.example.com/gone.mp3", 4),
		},
		OutputDir: t.TempDir(),
		Workers:   1,
	})
	require.NoError(t, ml.Close())

	reader := logger.NewLogReader(logsDir)
	downloaded, err := reader.SearchLogs(logger.CategoryDownload, time.Now(), "episode_downloaded", 0)
	require.NoError(t, err)
	assert.Len(t, downloaded, 1)

	errs, err := reader.ReadTodayLogs(logger.CategoryError, 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "episode_failed", errs[0].Message)
}
