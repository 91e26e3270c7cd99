package domain

// DownloadRepository defines the interface for journal persistence
type DownloadRepository interface {
	// Create stores a new journal entry
	Create(record *DownloadRecord) error

	// FindByID finds a journal entry by ID
	FindByID(id string) (*DownloadRecord, error)

	// FindByRun returns every entry written during one run
	FindByRun(runID string) ([]*DownloadRecord, error)

	// FindAll finds entries with optional filters (status, run_id, feed_title), newest first
	FindAll(filters map[string]interface{}) ([]*DownloadRecord, error)

	// Count returns the total number of entries
	Count() (int64, error)

	// CountByStatus returns the number of entries with the given status
	CountByStatus(status DownloadStatus) (int64, error)

	// GetStats returns journal statistics
	GetStats() (*DownloadStats, error)

	// Close releases the underlying database
	Close() error
}

// DownloadStats represents journal statistics
type DownloadStats struct {
	Total      int64 `json:"total"`
	Downloaded int64 `json:"downloaded"`
	Skipped    int64 `json:"skipped"`
	Failed     int64 `json:"failed"`
	Runs       int64 `json:"runs"`
}
