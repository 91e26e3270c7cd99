package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// FeedLoader reads feed bytes from the network or from disk
type FeedLoader struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewFeedLoader creates a new feed loader
func NewFeedLoader(client *http.Client, userAgent string, logger *zap.Logger) *FeedLoader {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedLoader{client: client, userAgent: userAgent, logger: logger}
}

// Load returns the raw bytes of the feed
func (l *FeedLoader) Load(ctx context.Context, source domain.FeedSource) ([]byte, error) {
	switch source.Kind() {
	case domain.SourceURL:
		return l.loadURL(ctx, source.Location())
	case domain.SourceFile:
		data, err := os.ReadFile(source.Location())
		if err != nil {
			return nil, fmt.Errorf("failed to read feed file: %w", err)
		}
		l.logger.Debug("Read feed file", zap.String("path", source.Location()), zap.Int("bytes", len(data)))
		return data, nil
	default:
		return nil, domain.ErrNoFeedSource
	}
}

func (l *FeedLoader) loadURL(ctx context.Context, url string) ([]byte, error) {
	l.logger.Info("Fetching feed", zap.String("url", url))

	resp, err := get(ctx, l.client, url, l.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	return data, nil
}
