package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/columnfella/Transcripting-webapp/models"
	"github.com/columnfella/Transcripting-webapp/store"
)

func newTestGenerator(t *testing.T) (*Generator, *store.Store) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "metadata.json"), log)
	require.NoError(t, err)
	return NewGenerator(st, dir, log), st
}

func sampleRecord(id string) models.VideoRecord {
	return models.VideoRecord{
		ID:       id,
		Title:    "Board meeting",
		Duration: 70,
		Transcript: models.Transcript{
			Text: "welcome everyone closing remarks",
			Words: []models.Word{
				{Start: 1.2, End: 1.6, Word: "welcome"},
				{Start: 2.0, End: 2.4, Word: "everyone"},
				{Start: 65.0, End: 65.5, Word: "closing"},
				{Start: 65.6, End: 66.0, Word: "remarks"},
			},
		},
	}
}

func TestRenderFullWritesFileAndUpdatesRecord(t *testing.T) {
	g, st := newTestGenerator(t)
	rec := sampleRecord("1")
	require.NoError(t, st.Append(rec))

	filename, err := g.RenderFull(rec)
	require.NoError(t, err)
	assert.Regexp(t, `^video_1_\d{14}\.pdf$`, filename)

	info, err := os.Stat(filepath.Join(g.OutputDir, filename))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	stored, err := st.Find("1")
	require.NoError(t, err)
	assert.Equal(t, filename, stored.PDFFile)
}

func TestRenderFullBeforeRecordPersisted(t *testing.T) {
	// During ingestion the record is not in the store yet; the filename
	// write-back must quietly skip instead of failing the render.
	g, _ := newTestGenerator(t)

	filename, err := g.RenderFull(sampleRecord("9"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(g.OutputDir, filename))
}

func TestRenderRangeWritesIntervalFile(t *testing.T) {
	g, _ := newTestGenerator(t)

	filename, err := g.RenderRange(sampleRecord("3"), 0, 10)
	require.NoError(t, err)
	assert.Regexp(t, `^video_3_interval_0_10_\d{14}\.pdf$`, filename)
	assert.FileExists(t, filepath.Join(g.OutputDir, filename))
}

func TestRenderRangeRejectsMalformedRanges(t *testing.T) {
	g, _ := newTestGenerator(t)
	rec := sampleRecord("3")

	tests := []struct {
		name       string
		start, end float64
	}{
		{"start equals end", 10, 10},
		{"start after end", 20, 10},
		{"negative start", -1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.RenderRange(rec, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestRenderRangeRejectsWordlessTranscript(t *testing.T) {
	g, _ := newTestGenerator(t)
	rec := sampleRecord("3")
	rec.Transcript.Words = nil

	_, err := g.RenderRange(rec, 0, 10)
	assert.ErrorIs(t, err, ErrNoWords)
}

func TestRenderRangeEmptySelectionStillProducesDocument(t *testing.T) {
	g, _ := newTestGenerator(t)

	// The words all sit outside 30-40s, so the document carries the
	// diagnostic block instead of transcript lines.
	filename, err := g.RenderRange(sampleRecord("3"), 30, 40)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(g.OutputDir, filename))
}

func TestGroupBySecond(t *testing.T) {
	words := []models.Word{
		{Start: 3.2, Word: "hello"},
		{Start: 3.8, Word: "there"},
		{Start: 65.0, Word: "bye"},
		{Start: 4.1, Word: "  "},
	}
	lines := groupBySecond(words)
	require.Len(t, lines, 2)
	assert.Equal(t, "[0:00:03] hello there", lines[0])
	assert.Equal(t, "[0:01:05] bye", lines[1])
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0:00:00", formatTimestamp(0))
	assert.Equal(t, "0:00:30", formatTimestamp(30))
	assert.Equal(t, "0:01:05", formatTimestamp(65.9))
	assert.Equal(t, "1:01:01", formatTimestamp(3661))
}
