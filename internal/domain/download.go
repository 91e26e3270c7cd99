package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus is the outcome of processing one episode
type DownloadStatus string

const (
	StatusDownloaded DownloadStatus = "downloaded"
	StatusSkipped    DownloadStatus = "skipped"
	StatusFailed     DownloadStatus = "failed"
)

// ValidateStatus checks if a status is one of the known outcomes
func ValidateStatus(status DownloadStatus) bool {
	return status == StatusDownloaded || status == StatusSkipped || status == StatusFailed
}

// DownloadRecord is one journal entry: what happened to an episode during a run.
// The journal is history only; it is never read back to decide what to download.
type DownloadRecord struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	RunID        string         `json:"run_id" gorm:"not null;index"`
	FeedTitle    string         `json:"feed_title" gorm:"index"`
	EpisodeTitle string         `json:"episode_title" gorm:"not null"`
	AudioURL     string         `json:"audio_url" gorm:"not null"`
	FilePath     string         `json:"file_path"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	DeclaredSize int64          `json:"declared_size"`
	BytesWritten int64          `json:"bytes_written"`
	ErrorMessage string         `json:"error_message,omitempty"`
	PublishedAt  time.Time      `json:"published_at"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName keeps the table name stable across model renames
func (DownloadRecord) TableName() string {
	return "downloads"
}

// NewDownloadRecord creates a journal entry for an episode in the given run
func NewDownloadRecord(runID, feedTitle string, ep Episode, filePath string) *DownloadRecord {
	return &DownloadRecord{
		ID:           uuid.New().String(),
		RunID:        runID,
		FeedTitle:    feedTitle,
		EpisodeTitle: ep.Title(),
		AudioURL:     ep.AudioURL().String(),
		FilePath:     filePath,
		DeclaredSize: ep.DeclaredSize(),
		PublishedAt:  ep.PublishedAt(),
		CreatedAt:    time.Now(),
	}
}

// MarkDownloaded records a successful download
func (r *DownloadRecord) MarkDownloaded(bytesWritten int64) {
	r.Status = StatusDownloaded
	r.BytesWritten = bytesWritten
	r.ErrorMessage = ""
}

// MarkSkipped records that the target file already existed
func (r *DownloadRecord) MarkSkipped() {
	r.Status = StatusSkipped
}

// MarkFailed records a failed download
func (r *DownloadRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}
