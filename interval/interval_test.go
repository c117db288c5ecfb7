package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/columnfella/Transcripting-webapp/models"
)

func TestGroupWordsCoversTimelineWithoutGaps(t *testing.T) {
	words := []models.Word{
		{Start: 2, End: 2.5, Word: "hello"},
		{Start: 65, End: 65.4, Word: "there"},
		{Start: 131, End: 131.2, Word: "world"},
	}

	buckets := GroupWords(words, 30, -1)
	require.Len(t, buckets, 5)

	for i, b := range buckets {
		assert.Equal(t, float64(i*30), b.Start, "bucket %d start", i)
	}
	assert.Len(t, buckets[0].Words, 1)
	assert.Empty(t, buckets[1].Words)
	assert.Len(t, buckets[2].Words, 1)
	assert.Empty(t, buckets[3].Words)
	assert.Len(t, buckets[4].Words, 1)
}

func TestGroupWordsBoundedByDuration(t *testing.T) {
	words := []models.Word{
		{Start: 10, End: 10.3, Word: "hello"},
		{Start: 40, End: 40.2, Word: "world"},
	}

	buckets := GroupWords(words, 30, 50)
	require.Len(t, buckets, 2)
	assert.Equal(t, 0.0, buckets[0].Start)
	assert.Equal(t, 30.0, buckets[1].Start)
	assert.Equal(t, "hello", buckets[0].Words[0].Word)
	assert.Equal(t, "world", buckets[1].Words[0].Word)
}

func TestGroupWordsDurationExtendsPastLastWord(t *testing.T) {
	words := []models.Word{{Start: 3, End: 3.5, Word: "only"}}

	buckets := GroupWords(words, 30, 95)
	require.Len(t, buckets, 4)
	assert.Empty(t, buckets[3].Words)
}

func TestGroupWordsEmptyInput(t *testing.T) {
	assert.Nil(t, GroupWords(nil, 30, 100))
	assert.Nil(t, GroupWords([]models.Word{{Start: 1}}, 0, 100))
}

func TestAssignSegments(t *testing.T) {
	segments := []models.Segment{
		{Start: 10, End: 25, Text: "hello"},
		{Start: 40, End: 45, Text: "world"},
	}

	buckets := AssignSegments(segments, 30)
	require.Len(t, buckets, 2)

	require.Len(t, buckets[0].Segments, 1)
	assert.Equal(t, "hello", buckets[0].Segments[0].Text)

	// end 45 falls inside [30, 60], so the segment stays in bucket 30
	require.Len(t, buckets[1].Segments, 1)
	assert.Equal(t, "world", buckets[1].Segments[0].Text)
}

func TestAssignSegmentsDropsBoundaryStraddlers(t *testing.T) {
	segments := []models.Segment{
		{Start: 25, End: 35, Text: "straddler"},
		{Start: 40, End: 50, Text: "kept"},
	}

	buckets := AssignSegments(segments, 30)
	require.Len(t, buckets, 2)
	assert.Empty(t, buckets[0].Segments, "straddler must not land in bucket 0")
	require.Len(t, buckets[1].Segments, 1)
	assert.Equal(t, "kept", buckets[1].Segments[0].Text)
}

func TestAssignSegmentsGapFilling(t *testing.T) {
	segments := []models.Segment{{Start: 95, End: 100, Text: "late"}}

	buckets := AssignSegments(segments, 30)
	require.Len(t, buckets, 4)
	for i := 0; i < 3; i++ {
		assert.Empty(t, buckets[i].Segments)
	}
	assert.Len(t, buckets[3].Segments, 1)
}

func TestSelectWordsInclusiveBounds(t *testing.T) {
	words := []models.Word{
		{Start: 5, Word: "at-start"},
		{Start: 7.5, Word: "inside"},
		{Start: 10, Word: "at-end"},
	}

	sel := SelectWords(words, 5, 10)
	require.Len(t, sel.Words, 3)
	assert.Equal(t, 3, sel.TotalWords)
}

func TestSelectWordsEpsilonTolerance(t *testing.T) {
	tests := []struct {
		name     string
		start    float64
		included bool
	}{
		{"epsilon-close below range start", 4.95, true},
		{"beyond epsilon below range start", 4.85, false},
		{"epsilon-close above range end", 10.05, true},
		{"beyond epsilon above range end", 10.2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := SelectWords([]models.Word{{Start: tt.start, Word: "w"}}, 5, 10)
			if tt.included {
				assert.Len(t, sel.Words, 1)
			} else {
				assert.Empty(t, sel.Words)
			}
		})
	}
}

func TestSelectWordsEmptySelectionDiagnostics(t *testing.T) {
	words := []models.Word{
		{Start: 12, Word: "near"},
		{Start: 13, Word: "also-near"},
		{Start: 60, Word: "far"},
	}

	sel := SelectWords(words, 2, 8)
	assert.Empty(t, sel.Words)
	assert.Equal(t, 3, sel.TotalWords)
	assert.Equal(t, 2, sel.Nearby, "words within the 5s buffer of [2, 8]")
	assert.Equal(t, 12.0, sel.MinStart)
	assert.Equal(t, 60.0, sel.MaxStart)
}
