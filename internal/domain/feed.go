package domain

import "time"

// Feed is a parsed podcast feed
type Feed struct {
	Title    string
	FeedType string // rss, atom or json
	Items    []FeedItem
}

// FeedItem is one entry of a feed as exposed by the feed parser.
// Every field is optional; Extract decides whether the item is usable.
type FeedItem struct {
	Title           string
	GUID            string
	Enclosure       *Enclosure
	Published       string
	PublishedParsed *time.Time
}

// Enclosure is the media attachment of a feed item, with fields as declared by the feed
type Enclosure struct {
	URL    string
	Length string
	Type   string
}

// ArchiveExtension returns the file extension used when saving the raw feed
func (f *Feed) ArchiveExtension() string {
	if f.FeedType == "json" {
		return "json"
	}
	return "xml"
}
