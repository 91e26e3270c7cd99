package infrastructure

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bogem/id3v2"
	"github.com/tcolgate/mp3"
	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// ID3Tagger writes ID3v2 title, album, year and length frames into downloaded MP3s
type ID3Tagger struct {
	logger *zap.Logger
}

// NewID3Tagger creates a new tagger
func NewID3Tagger(logger *zap.Logger) *ID3Tagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ID3Tagger{logger: logger}
}

// Tag adds episode metadata to the MP3 at path, keeping frames already present
func (t *ID3Tagger) Tag(path string, ep domain.Episode, feedTitle string) error {
	duration, err := mp3Duration(path)
	if err != nil {
		t.logger.Debug("Could not compute MP3 duration", zap.String("path", path), zap.Error(err))
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if tag.Title() == "" {
		tag.SetTitle(ep.Title())
	}
	if feedTitle != "" && tag.Album() == "" {
		tag.SetAlbum(feedTitle)
	}
	if tag.Year() == "" {
		tag.SetYear(strconv.Itoa(ep.PublishedAt().Year()))
	}
	if duration > 0 {
		tag.AddTextFrame(tag.CommonID("Length"), id3v2.EncodingUTF8, strconv.FormatInt(duration.Milliseconds(), 10))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}

	t.logger.Debug("Tagged episode", zap.String("path", path), zap.Duration("duration", duration))
	return nil
}

// mp3Duration sums the frame durations of an MP3 file
func mp3Duration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder := mp3.NewDecoder(file)
	var (
		frame    mp3.Frame
		skipped  int
		duration time.Duration
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				return duration, nil
			}
			return duration, err
		}
		duration += frame.Duration()
	}
}
