package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// FeedArchiver saves the raw feed next to the downloaded episodes
type FeedArchiver struct {
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeedArchiver creates an archiver writing into outputDir
func NewFeedArchiver(outputDir string, logger *zap.Logger) *FeedArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedArchiver{outputDir: outputDir, logger: logger, now: time.Now}
}

// ArchiveName returns "<today> - <sanitized title>.<ext>"
func (a *FeedArchiver) ArchiveName(feedTitle string, feed *domain.Feed) string {
	title := domain.SanitizeFilename(strings.TrimSpace(feedTitle))
	if title == "" {
		title = "feed"
	}
	ext := "xml"
	if feed != nil {
		ext = feed.ArchiveExtension()
	}
	prefix := a.now().Format("2006-01-02") + " - "
	suffix := "." + ext
	return prefix + domain.TruncateUTF8(title, domain.MaxFilenameBytes-len(prefix)-len(suffix)) + suffix
}

// Archive writes raw to the output directory, replacing an archive written
// earlier the same day, and returns the path written
func (a *FeedArchiver) Archive(raw []byte, feed *domain.Feed) (string, error) {
	var title string
	if feed != nil {
		title = feed.Title
	}
	path := filepath.Join(a.outputDir, a.ArchiveName(title, feed))

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to archive feed: %w", err)
	}

	a.logger.Info("Archived feed", zap.String("path", path), zap.Int("bytes", len(raw)))
	return path, nil
}
