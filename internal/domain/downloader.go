package domain

import (
	"context"
	"io"
)

// MediaResponse is an open media download
type MediaResponse struct {
	Body io.ReadCloser
	// ContentLength is the length announced by the server, or -1 when unknown
	ContentLength int64
}

// MediaFetcher opens the media behind an enclosure URL
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) (*MediaResponse, error)
}

// FeedLoader returns the raw bytes of a feed
type FeedLoader interface {
	Load(ctx context.Context, source FeedSource) ([]byte, error)
}

// FeedParser turns raw feed bytes into a Feed
type FeedParser interface {
	Parse(raw []byte) (*Feed, error)
}

// Tagger writes metadata into a freshly downloaded media file
type Tagger interface {
	Tag(path string, ep Episode, feedTitle string) error
}

// Notifier announces the end of a run to the user
type Notifier interface {
	NotifyRunCompleted(feedTitle string, downloaded, skipped, failed int) error
}
