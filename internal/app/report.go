package app

import (
	"sync"
	"time"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// DownloadResult is the outcome of processing one episode
type DownloadResult struct {
	Episode      domain.Episode
	Path         string
	Status       domain.DownloadStatus
	BytesWritten int64
	Err          error
}

// RunReport aggregates the outcome of one run
type RunReport struct {
	RunID              string
	FeedTitle          string
	StartedAt          time.Time
	FinishedAt         time.Time
	Results            []DownloadResult
	ExtractionFailures []error
	ArchivePath        string

	mu sync.Mutex
}

func newRunReport(runID, feedTitle string) *RunReport {
	return &RunReport{RunID: runID, FeedTitle: feedTitle, StartedAt: time.Now()}
}

func (r *RunReport) add(result DownloadResult) {
	r.mu.Lock()
	r.Results = append(r.Results, result)
	r.mu.Unlock()
}

func (r *RunReport) count(status domain.DownloadStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Downloaded returns the number of episodes fetched in this run
func (r *RunReport) Downloaded() int { return r.count(domain.StatusDownloaded) }

// Skipped returns the number of episodes whose file already existed
func (r *RunReport) Skipped() int { return r.count(domain.StatusSkipped) }

// Failed returns the number of episodes whose download failed
func (r *RunReport) Failed() int { return r.count(domain.StatusFailed) }

// Duration returns how long the run took
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
