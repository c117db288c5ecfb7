// Package interval partitions timestamped transcript items into fixed-width
// time buckets and answers arbitrary range queries over them.
package interval

import (
	"math"

	"github.com/columnfella/Transcripting-webapp/models"
)

const (
	// Epsilon absorbs provider timestamp jitter on range boundaries.
	Epsilon = 0.1
	// NearbyBuffer widens an empty selection when probing for diagnostics.
	NearbyBuffer = 5.0
)

// WordBucket is one fixed-width window of words in membership mode: a word
// belongs to the bucket its start time falls into, regardless of its end.
type WordBucket struct {
	Start float64
	Words []models.Word
}

// SegmentBucket is one fixed-width window of segments in assignment mode: a
// segment is accepted only when both its start and end fall inside the
// window. Segments straddling a boundary are dropped from both sides.
type SegmentBucket struct {
	Start    float64
	Segments []models.Segment
}

// GroupWords buckets words by floor(start/width)*width and emits every bucket
// from 0 through the last one in order, empty buckets included, so downstream
// rendering sees a fixed-cadence timeline regardless of transcript sparsity.
// The last bucket covers max(totalDuration, highest word start); pass a
// negative totalDuration when the duration is unknown. An empty word list
// yields no buckets.
func GroupWords(words []models.Word, width float64, totalDuration float64) []WordBucket {
	if len(words) == 0 || width <= 0 {
		return nil
	}

	grouped := make(map[float64][]models.Word)
	maxStart := 0.0
	for _, w := range words {
		if w.Start > maxStart {
			maxStart = w.Start
		}
		bucket := math.Floor(w.Start/width) * width
		grouped[bucket] = append(grouped[bucket], w)
	}

	last := maxStart
	if totalDuration >= 0 {
		last = totalDuration
	}
	lastBucket := math.Floor(last/width) * width

	var buckets []WordBucket
	for start := 0.0; start <= lastBucket; start += width {
		buckets = append(buckets, WordBucket{Start: start, Words: grouped[start]})
	}
	return buckets
}

// AssignSegments buckets segments into contiguous windows of the given width,
// from 0 through the window containing the highest segment end. A segment is
// assigned to a window only when start >= windowStart and end <= windowEnd;
// boundary straddlers fall out entirely. Empty windows are emitted with a nil
// segment list.
func AssignSegments(segments []models.Segment, width float64) []SegmentBucket {
	if len(segments) == 0 || width <= 0 {
		return nil
	}

	maxEnd := 0.0
	for _, seg := range segments {
		if seg.End > maxEnd {
			maxEnd = seg.End
		}
	}
	lastBucket := math.Floor(maxEnd/width) * width

	var buckets []SegmentBucket
	for start := 0.0; start <= lastBucket; start += width {
		end := start + width
		b := SegmentBucket{Start: start}
		for _, seg := range segments {
			if seg.Start >= start && seg.End <= end {
				b.Segments = append(b.Segments, seg)
			}
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// Selection is the result of a range query. When Words is empty the
// diagnostic fields explain why: how many words sit within NearbyBuffer of
// the range and what time span the transcript actually covers. Reporting
// surfaces these to the user rather than producing a silently empty document.
type Selection struct {
	Words      []models.Word
	TotalWords int
	Nearby     int
	MinStart   float64
	MaxStart   float64
}

// SelectWords returns the words whose start falls inside [start, end], both
// ends inclusive with an Epsilon tolerance.
func SelectWords(words []models.Word, start, end float64) Selection {
	sel := Selection{TotalWords: len(words)}
	first := true
	for _, w := range words {
		if w.Start >= start-Epsilon && w.Start <= end+Epsilon {
			sel.Words = append(sel.Words, w)
		}
		if first || w.Start < sel.MinStart {
			sel.MinStart = w.Start
		}
		if first || w.Start > sel.MaxStart {
			sel.MaxStart = w.Start
		}
		first = false
	}
	if len(sel.Words) == 0 {
		for _, w := range words {
			if w.Start >= start-NearbyBuffer && w.Start <= end+NearbyBuffer {
				sel.Nearby++
			}
		}
	}
	return sel
}
