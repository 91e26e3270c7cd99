package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDownloadRecord(t *testing.T) {
	ep := mustExtract(t, validItem())

	record := NewDownloadRecord("run-1", "My Show", ep, "/tmp/out.mp3")

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "run-1", record.RunID)
	assert.Equal(t, "My Show", record.FeedTitle)
	assert.Equal(t, "Episode #1 Intro", record.EpisodeTitle)
	assert.Equal(t, "https://cdn.example.com/audio/show-42.mp3", record.AudioURL)
	assert.Equal(t, int64(1000), record.DeclaredSize)
	assert.Equal(t, "/tmp/out.mp3", record.FilePath)
}

func TestNewDownloadRecord_HugeDeclaredSizeIsClamped(t *testing.T) {
	item := validItem()
	item.Enclosure.Length = "18446744073709551615"
	ep := mustExtract(t, item)

	record := NewDownloadRecord("run-1", "My Show", ep, "out.mp3")

	assert.Equal(t, uint64(math.MaxUint64), ep.Size())
	assert.Equal(t, int64(math.MaxInt64), ep.DeclaredSize())
	assert.Equal(t, int64(math.MaxInt64), record.DeclaredSize)
}

func TestDownloadRecord_Mark(t *testing.T) {
	ep := mustExtract(t, validItem())
	record := NewDownloadRecord("run-1", "", ep, "out.mp3")

	record.MarkFailed(errors.New("connection reset"))
	assert.Equal(t, StatusFailed, record.Status)
	assert.Equal(t, "connection reset", record.ErrorMessage)

	record.MarkDownloaded(999)
	assert.Equal(t, StatusDownloaded, record.Status)
	assert.Equal(t, int64(999), record.BytesWritten)
	assert.Empty(t, record.ErrorMessage)

	record.MarkSkipped()
	assert.Equal(t, StatusSkipped, record.Status)
}

func TestValidateStatus(t *testing.T) {
	assert.True(t, ValidateStatus(StatusDownloaded))
	assert.True(t, ValidateStatus(StatusSkipped))
	assert.True(t, ValidateStatus(StatusFailed))
	assert.False(t, ValidateStatus("queued"))
}
