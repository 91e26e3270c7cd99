package infrastructure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// HTTPMediaFetcher fetches enclosure media over HTTP(S)
type HTTPMediaFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPMediaFetcher creates a new media fetcher
func NewHTTPMediaFetcher(client *http.Client, userAgent string) *HTTPMediaFetcher {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &HTTPMediaFetcher{client: client, userAgent: userAgent}
}

// Fetch opens the media at url. ContentLength is -1 when the server does not announce it.
func (f *HTTPMediaFetcher) Fetch(ctx context.Context, url string) (*domain.MediaResponse, error) {
	resp, err := get(ctx, f.client, url, f.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	return &domain.MediaResponse{Body: resp.Body, ContentLength: resp.ContentLength}, nil
}
