package domain

import (
	"errors"
	"strings"
)

var (
	ErrNoFeedSource        = errors.New("a feed URL or a feed file is required")
	ErrAmbiguousFeedSource = errors.New("feed URL and feed file are mutually exclusive")
)

// SourceKind tells where the feed bytes come from
type SourceKind string

const (
	SourceURL  SourceKind = "url"
	SourceFile SourceKind = "file"
)

// FeedSource is either a remote feed URL or a local feed file, never both
type FeedSource struct {
	kind     SourceKind
	location string
}

// NewURLSource creates a source for a remote feed
func NewURLSource(feedURL string) FeedSource {
	return FeedSource{kind: SourceURL, location: feedURL}
}

// NewFileSource creates a source for a previously saved feed
func NewFileSource(path string) FeedSource {
	return FeedSource{kind: SourceFile, location: path}
}

// ParseFeedSource builds a FeedSource from the two mutually exclusive inputs
func ParseFeedSource(feedURL, file string) (FeedSource, error) {
	feedURL = strings.TrimSpace(feedURL)
	file = strings.TrimSpace(file)

	switch {
	case feedURL != "" && file != "":
		return FeedSource{}, ErrAmbiguousFeedSource
	case feedURL != "":
		return NewURLSource(feedURL), nil
	case file != "":
		return NewFileSource(file), nil
	default:
		return FeedSource{}, ErrNoFeedSource
	}
}

// Kind returns the source kind
func (s FeedSource) Kind() SourceKind { return s.kind }

// Location returns the URL or file path
func (s FeedSource) Location() string { return s.location }

func (s FeedSource) String() string {
	return string(s.kind) + ":" + s.location
}
