package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MediaKind is the kind of media carried by an episode enclosure
type MediaKind string

const (
	MediaMP3 MediaKind = "mp3"
	MediaM4A MediaKind = "m4a"
	MediaMOV MediaKind = "mov"
	MediaMP4 MediaKind = "mp4"
	MediaM4V MediaKind = "m4v"
	MediaPDF MediaKind = "pdf"
)

// mediaKinds maps declared enclosure MIME types to media kinds
var mediaKinds = map[string]MediaKind{
	"audio/mpeg":      MediaMP3,
	"audio/x-m4a":     MediaM4A,
	"video/quicktime": MediaMOV,
	"video/mp4":       MediaMP4,
	"video/x-m4v":     MediaM4V,
	"application/pdf": MediaPDF,
}

// Extension returns the file extension (without dot) for the media kind
func (k MediaKind) Extension() string {
	return string(k)
}

// MediaKindFromMIME looks up the media kind for a declared MIME type.
// Matching is case-insensitive and ignores MIME parameters.
func MediaKindFromMIME(mimeType string) (MediaKind, bool) {
	base, _, _ := strings.Cut(mimeType, ";")
	kind, ok := mediaKinds[strings.ToLower(strings.TrimSpace(base))]
	return kind, ok
}

// Episode is a validated podcast episode ready to be downloaded.
// Episodes are only built by Extract and are read-only afterwards.
type Episode struct {
	title       string
	audioURL    *url.URL
	size        uint64
	publishedAt time.Time
	mediaKind   MediaKind
}

// Title returns the sanitized episode title
func (e Episode) Title() string { return e.title }

// AudioURL returns a copy of the enclosure URL
func (e Episode) AudioURL() *url.URL {
	u := *e.audioURL
	return &u
}

// Size returns the enclosure length declared by the feed
func (e Episode) Size() uint64 { return e.size }

// DeclaredSize is Size clamped to the int64 range used for byte counts
func (e Episode) DeclaredSize() int64 {
	if e.size > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(e.size)
}

// PublishedAt returns the publication date
func (e Episode) PublishedAt() time.Time { return e.publishedAt }

// MediaKind returns the kind of media in the enclosure
func (e Episode) MediaKind() MediaKind { return e.mediaKind }

// String implements fmt.Stringer for log output
func (e Episode) String() string {
	return fmt.Sprintf("%s (%s)", e.title, e.audioURL)
}

// pubDateLayouts are tried in order against the raw publication date
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// Extract converts a raw feed item into an Episode. It has no side effects;
// a failure is always an *ExtractionError.
func Extract(item FeedItem) (Episode, error) {
	title, err := resolveTitle(item)
	if err != nil {
		return Episode{}, err
	}

	if item.Enclosure == nil || strings.TrimSpace(item.Enclosure.URL) == "" {
		return Episode{}, newExtractionError(ErrMissingEnclosure, title, "item has no enclosure", nil)
	}
	enc := item.Enclosure

	audioURL, err := url.Parse(strings.TrimSpace(enc.URL))
	if err != nil {
		return Episode{}, newExtractionError(ErrMissingEnclosure, title, "enclosure URL does not parse", err)
	}
	if !audioURL.IsAbs() || audioURL.Host == "" {
		return Episode{}, newExtractionError(ErrMissingEnclosure, title,
			fmt.Sprintf("enclosure URL %q is not absolute", enc.URL), nil)
	}
	if RemoteFilename(audioURL) == "" {
		return Episode{}, newExtractionError(ErrMissingEnclosure, title,
			fmt.Sprintf("enclosure URL %q has no usable file name", enc.URL), nil)
	}

	size, err := strconv.ParseUint(strings.TrimSpace(enc.Length), 10, 64)
	if err != nil {
		return Episode{}, newExtractionError(ErrInvalidEnclosureSize, title,
			fmt.Sprintf("enclosure length %q", enc.Length), err)
	}

	kind, ok := MediaKindFromMIME(enc.Type)
	if !ok {
		return Episode{}, newExtractionError(ErrUnsupportedMediaType, title,
			fmt.Sprintf("enclosure type %q", enc.Type), nil)
	}

	publishedAt, err := resolvePublished(item)
	if err != nil {
		return Episode{}, newExtractionError(ErrMissingOrInvalidDate, title,
			fmt.Sprintf("publication date %q", item.Published), err)
	}

	return Episode{
		title:       title,
		audioURL:    audioURL,
		size:        size,
		publishedAt: publishedAt,
		mediaKind:   kind,
	}, nil
}

// ExtractAll converts every item it can. Items that fail are reported in the
// returned error slice, in feed order; one bad item never stops the batch.
func ExtractAll(items []FeedItem) ([]Episode, []error) {
	episodes := make([]Episode, 0, len(items))
	var failures []error
	for _, item := range items {
		ep, err := Extract(item)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		episodes = append(episodes, ep)
	}
	return episodes, failures
}

func resolveTitle(item FeedItem) (string, error) {
	for _, candidate := range []string{item.Title, item.GUID} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if title := SanitizeFilename(strings.TrimSpace(candidate)); title != "" {
			return title, nil
		}
	}
	return "", newExtractionError(ErrMissingTitle, "", "item has neither a usable title nor a GUID", nil)
}

// resolvePublished parses the raw date first so the feed's own offset is kept,
// falling back to the parser's own (more lenient) result
func resolvePublished(item FeedItem) (time.Time, error) {
	raw := strings.TrimSpace(item.Published)

	var lastErr error = fmt.Errorf("publication date is empty")
	if raw != "" {
		for _, layout := range pubDateLayouts {
			t, err := time.Parse(layout, raw)
			if err == nil {
				return t, nil
			}
			lastErr = err
		}
	}

	if item.PublishedParsed != nil && !item.PublishedParsed.IsZero() {
		return *item.PublishedParsed, nil
	}
	return time.Time{}, lastErr
}
