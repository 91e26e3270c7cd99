package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() FeedItem {
	return FeedItem{
		Title: "Episode #1: Intro",
		GUID:  "urn:episode:1",
		Enclosure: &Enclosure{
			URL:    "https://cdn.example.com/audio/show-42.mp3",
			Length: "1000",
			Type:   "audio/mpeg",
		},
		Published: "Mon, 01 Jan 2024 00:00:00 +0000",
	}
}

func mustExtract(t *testing.T, item FeedItem) Episode {
	t.Helper()
	ep, err := Extract(item)
	require.NoError(t, err)
	return ep
}

func TestExtract_ValidItem(t *testing.T) {
	ep := mustExtract(t, validItem())

	assert.Equal(t, "Episode #1 Intro", ep.Title())
	assert.Equal(t, "https://cdn.example.com/audio/show-42.mp3", ep.AudioURL().String())
	assert.Equal(t, uint64(1000), ep.Size())
	assert.Equal(t, MediaMP3, ep.MediaKind())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ep.PublishedAt().UTC())
}

func TestExtract_AudioURLIsCopied(t *testing.T) {
	ep := mustExtract(t, validItem())

	u := ep.AudioURL()
	u.Host = "evil.example.com"

	assert.Equal(t, "cdn.example.com", ep.AudioURL().Host)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FeedItem)
		kind   error
	}{
		{"no title or guid", func(i *FeedItem) { i.Title = ""; i.GUID = "" }, ErrMissingTitle},
		{"title sanitizes to nothing", func(i *FeedItem) { i.Title = ":::"; i.GUID = "" }, ErrMissingTitle},
		{"no enclosure", func(i *FeedItem) { i.Enclosure = nil }, ErrMissingEnclosure},
		{"empty enclosure url", func(i *FeedItem) { i.Enclosure.URL = "" }, ErrMissingEnclosure},
		{"relative enclosure url", func(i *FeedItem) { i.Enclosure.URL = "/audio/show.mp3" }, ErrMissingEnclosure},
		{"unparseable enclosure url", func(i *FeedItem) { i.Enclosure.URL = "http://[::1" }, ErrMissingEnclosure},
		{"enclosure url without file name", func(i *FeedItem) { i.Enclosure.URL = "https://cdn.example.com/" }, ErrMissingEnclosure},
		{"non numeric length", func(i *FeedItem) { i.Enclosure.Length = "big" }, ErrInvalidEnclosureSize},
		{"negative length", func(i *FeedItem) { i.Enclosure.Length = "-5" }, ErrInvalidEnclosureSize},
		{"empty length", func(i *FeedItem) { i.Enclosure.Length = "" }, ErrInvalidEnclosureSize},
		{"unsupported type", func(i *FeedItem) { i.Enclosure.Type = "audio/ogg" }, ErrUnsupportedMediaType},
		{"empty type", func(i *FeedItem) { i.Enclosure.Type = "" }, ErrUnsupportedMediaType},
		{"missing date", func(i *FeedItem) { i.Published = "" }, ErrMissingOrInvalidDate},
		{"garbage date", func(i *FeedItem) { i.Published = "yesterday" }, ErrMissingOrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)

			_, err := Extract(item)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)

			var extractionErr *ExtractionError
			require.True(t, errors.As(err, &extractionErr))
			assert.Equal(t, tt.kind, extractionErr.Kind)
		})
	}
}

func TestExtract_TitleFallsBackToGUID(t *testing.T) {
	item := validItem()
	item.Title = "   "
	item.GUID = "episode-guid-7"

	ep := mustExtract(t, item)
	assert.Equal(t, "episode-guid-7", ep.Title())
}

func TestExtract_MIMEParametersAndCase(t *testing.T) {
	item := validItem()
	item.Enclosure.Type = "Audio/MPEG; charset=binary"

	ep := mustExtract(t, item)
	assert.Equal(t, MediaMP3, ep.MediaKind())
}

func TestExtract_FallsBackToParsedDate(t *testing.T) {
	parsed := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	item := validItem()
	item.Published = "15 June 2023, noon"
	item.PublishedParsed = &parsed

	ep := mustExtract(t, item)
	assert.True(t, parsed.Equal(ep.PublishedAt()))
}

func TestExtract_RawDateKeepsFeedOffset(t *testing.T) {
	parsed := time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC)
	item := validItem()
	item.Published = "Mon, 01 Jan 2024 01:00:00 +0500"
	item.PublishedParsed = &parsed

	ep := mustExtract(t, item)
	assert.Equal(t, "2024-01-01", ep.PublishedAt().Format("2006-01-02"))
}

func TestExtract_DateLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Mon, 01 Jan 2024 00:00:00 +0000", "2024-01-01"},
		{"Mon, 1 Jan 2024 10:30:00 +0000", "2024-01-01"},
		{"Tue, 02 Jan 2024 10:30:00 GMT", "2024-01-02"},
		{"03 Jan 2024 10:30:00 -0500", "2024-01-03"},
		{"2024-01-04T23:30:00-08:00", "2024-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			item := validItem()
			item.Published = tt.raw

			ep := mustExtract(t, item)
			assert.Equal(t, tt.want, ep.PublishedAt().Format("2006-01-02"))
		})
	}
}

func TestMediaKindFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		kind MediaKind
	}{
		{"audio/mpeg", MediaMP3},
		{"audio/x-m4a", MediaM4A},
		{"video/quicktime", MediaMOV},
		{"video/mp4", MediaMP4},
		{"video/x-m4v", MediaM4V},
		{"application/pdf", MediaPDF},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			kind, ok := MediaKindFromMIME(tt.mime)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, string(tt.kind), kind.Extension())
		})
	}

	_, ok := MediaKindFromMIME("audio/wav")
	assert.False(t, ok)
}

func TestExtractAll_KeepsGoingPastBadItems(t *testing.T) {
	bad := validItem()
	bad.Enclosure = nil

	second := validItem()
	second.Title = "Episode 2"

	episodes, failures := ExtractAll([]FeedItem{validItem(), bad, second})

	require.Len(t, episodes, 2)
	require.Len(t, failures, 1)
	assert.Equal(t, "Episode #1 Intro", episodes[0].Title())
	assert.Equal(t, "Episode 2", episodes[1].Title())
	assert.ErrorIs(t, failures[0], ErrMissingEnclosure)
}

func TestExtractionError_Message(t *testing.T) {
	item := validItem()
	item.Enclosure.Length = "big"

	_, err := Extract(item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid enclosure size")
	assert.Contains(t, err.Error(), `"Episode #1 Intro"`)
}
