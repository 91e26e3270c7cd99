package infrastructure

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// GofeedParser parses RSS, Atom and JSON feeds with gofeed
type GofeedParser struct {
	parser *gofeed.Parser
}

// NewGofeedParser creates a new feed parser
func NewGofeedParser() *GofeedParser {
	return &GofeedParser{parser: gofeed.NewParser()}
}

// Parse converts raw feed bytes into a domain Feed. Only the first enclosure
// of each item is kept.
func (p *GofeedParser) Parse(raw []byte) (*domain.Feed, error) {
	parsed, err := p.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := &domain.Feed{
		Title:    parsed.Title,
		FeedType: parsed.FeedType,
		Items:    make([]domain.FeedItem, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Items = append(feed.Items, toFeedItem(item))
	}
	return feed, nil
}

func toFeedItem(item *gofeed.Item) domain.FeedItem {
	fi := domain.FeedItem{
		Title:           item.Title,
		GUID:            item.GUID,
		Published:       item.Published,
		PublishedParsed: item.PublishedParsed,
	}
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		fi.Enclosure = &domain.Enclosure{URL: enc.URL, Length: enc.Length, Type: enc.Type}
		break
	}
	return fi
}
