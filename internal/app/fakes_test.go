package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/podfetch-go/internal/domain"
)

func makeEpisode(t *testing.T, title, url string, size int) domain.Episode {
	t.Helper()
	ep, err := domain.Extract(domain.FeedItem{
		Title: title,
		Enclosure: &domain.Enclosure{
			URL:    url,
			Length: fmt.Sprint(size),
			Type:   "audio/mpeg",
		},
		Published: "Mon, 01 Jan 2024 00:00:00 +0000",
	})
	require.NoError(t, err)
	return ep
}

type fakeMedia struct {
	body          []byte
	contentLength int64 // -1 when the server sends none
	err           error
	failAfter     int // >0 makes the body fail after this many bytes
}

// fakeFetcher serves media from memory and counts requests per URL
type fakeFetcher struct {
	mu     sync.Mutex
	media  map[string]fakeMedia
	counts map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{media: make(map[string]fakeMedia), counts: make(map[string]int)}
}

func (f *fakeFetcher) serve(url string, body []byte) {
	f.media[url] = fakeMedia{body: body, contentLength: int64(len(body))}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*domain.MediaResponse, error) {
	f.mu.Lock()
	f.counts[url]++
	m, ok := f.media[url]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unexpected status 404 for %s", url)
	}
	if m.err != nil {
		return nil, m.err
	}

	var body io.Reader = bytes.NewReader(m.body)
	if m.failAfter > 0 {
		body = io.MultiReader(bytes.NewReader(m.body[:m.failAfter]), errReader{})
	}
	return &domain.MediaResponse{Body: io.NopCloser(body), ContentLength: m.contentLength}, nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[url]
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.counts {
		n += c
	}
	return n
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

// mockJournal implements domain.DownloadRepository for testing
type mockJournal struct {
	mu      sync.Mutex
	records []*domain.DownloadRecord
	err     error
}

func (m *mockJournal) Create(record *domain.DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockJournal) FindByID(id string) (*domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockJournal) FindByRun(runID string) ([]*domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.DownloadRecord
	for _, r := range m.records {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockJournal) FindAll(filters map[string]interface{}) ([]*domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.DownloadRecord(nil), m.records...), nil
}

func (m *mockJournal) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *mockJournal) CountByStatus(status domain.DownloadStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.records {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockJournal) GetStats() (*domain.DownloadStats, error) {
	return &domain.DownloadStats{}, nil
}

func (m *mockJournal) Close() error { return nil }

type fakeTagger struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeTagger) Tag(path string, ep domain.Episode, feedTitle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return nil
}

type fakeLoader struct {
	raw []byte
	err error
}

func (f *fakeLoader) Load(ctx context.Context, source domain.FeedSource) ([]byte, error) {
	return f.raw, f.err
}

type fakeParser struct {
	feed *domain.Feed
	err  error
}

func (f *fakeParser) Parse(raw []byte) (*domain.Feed, error) {
	return f.feed, f.err
}

type fakeNotifier struct {
	calls                       int
	downloaded, skipped, failed int
}

func (f *fakeNotifier) NotifyRunCompleted(feedTitle string, downloaded, skipped, failed int) error {
	f.calls++
	f.downloaded, f.skipped, f.failed = downloaded, skipped, failed
	return nil
}
