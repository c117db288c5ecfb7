// Package report renders transcripts into paginated PDF documents, either for
// the whole recording or for a caller-chosen time interval.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/interval"
	"github.com/columnfella/Transcripting-webapp/models"
	"github.com/columnfella/Transcripting-webapp/store"
)

const sectionWidth = 30.0

var (
	// ErrInvalidRange is returned for start >= end or negative start.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrNoWords is returned when the transcript has no timestamped words.
	ErrNoWords = errors.New("transcript has no words")
)

// Generator renders report documents into OutputDir. Every successful full
// render also writes the produced filename back into the store's matching
// record; callers rely on that to avoid a second write. The update is a no-op
// while the record has not been persisted yet, as during initial ingestion.
type Generator struct {
	Store     *store.Store
	OutputDir string
	Log       *logrus.Logger
}

// NewGenerator returns a Generator writing into outputDir.
func NewGenerator(st *store.Store, outputDir string, log *logrus.Logger) *Generator {
	return &Generator{Store: st, OutputDir: outputDir, Log: log}
}

// RenderFull lays out the whole transcript in 30-second sections bounded by
// the record's duration, one section per bucket, with an explicit placeholder
// for silent ranges.
func (g *Generator) RenderFull(rec models.VideoRecord) (string, error) {
	filename := fmt.Sprintf("video_%s_%s.pdf", rec.ID, time.Now().Format("20060102150405"))

	pdf, tr := newDocument()
	writeTitle(pdf, tr, "Transcription Report")

	heading(pdf, tr, "Transcript (30-second intervals):")
	for _, bucket := range interval.GroupWords(rec.Transcript.Words, sectionWidth, rec.Duration) {
		heading(pdf, tr, fmt.Sprintf("Interval %s", formatTimestamp(bucket.Start)))
		if len(bucket.Words) > 0 {
			body(pdf, tr, joinWords(bucket.Words))
		} else {
			body(pdf, tr, "No words in this interval.")
		}
		pdf.Ln(3)
	}

	path := filepath.Join(g.OutputDir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	g.Log.Infof("Report generated: %s", filename)

	if err := g.Store.Update(rec.ID, func(r *models.VideoRecord) {
		r.PDFFile = filename
	}); err != nil && !errors.Is(err, store.ErrVideoNotFound) {
		return "", fmt.Errorf("attach report filename to record %s: %w", rec.ID, err)
	}
	return filename, nil
}

// RenderRange renders the words inside [start, end], grouped into one-second
// sub-buckets for readability. It fails fast on a malformed range or a
// wordless transcript. An empty selection still produces a document, with a
// diagnostic block explaining why the interval is empty.
func (g *Generator) RenderRange(rec models.VideoRecord, start, end float64) (string, error) {
	if start >= end {
		return "", fmt.Errorf("start %.2f >= end %.2f: %w", start, end, ErrInvalidRange)
	}
	if start < 0 {
		return "", fmt.Errorf("negative start %.2f: %w", start, ErrInvalidRange)
	}
	words := rec.Transcript.Words
	if len(words) == 0 {
		return "", fmt.Errorf("video %s: %w", rec.ID, ErrNoWords)
	}

	sel := interval.SelectWords(words, start, end)
	g.Log.Infof("Found %d of %d words in interval %.2f-%.2fs for video %s",
		len(sel.Words), sel.TotalWords, start, end, rec.ID)

	filename := fmt.Sprintf("video_%s_interval_%d_%d_%s.pdf",
		rec.ID, int(start), int(end), time.Now().Format("20060102150405"))

	pdf, tr := newDocument()
	writeTitle(pdf, tr, fmt.Sprintf("Transcription Report (Interval: %ds - %ds)", int(start), int(end)))
	body(pdf, tr, fmt.Sprintf("Video: %s (ID: %s)", displayTitle(rec), rec.ID))
	pdf.Ln(4)

	heading(pdf, tr, fmt.Sprintf("Transcript (from %s to %s):", formatTimestamp(start), formatTimestamp(end)))
	if len(sel.Words) > 0 {
		for _, line := range groupBySecond(sel.Words) {
			body(pdf, tr, line)
		}
	} else {
		body(pdf, tr, "No words found in this interval.")
		pdf.Ln(4)
		heading(pdf, tr, "Diagnostic Information:")
		body(pdf, tr, fmt.Sprintf("- Requested interval: %.0fs - %.0fs", start, end))
		body(pdf, tr, fmt.Sprintf("- Total words in transcript: %d", sel.TotalWords))
		body(pdf, tr, fmt.Sprintf("- Transcript time range: %.2fs - %.2fs", sel.MinStart, sel.MaxStart))
		if sel.Nearby > 0 {
			body(pdf, tr, fmt.Sprintf("- Words within %.0fs of the interval: %d", interval.NearbyBuffer, sel.Nearby))
		}
	}

	path := filepath.Join(g.OutputDir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write interval report: %w", err)
	}
	g.Log.Infof("Interval report generated: %s", filename)
	return filename, nil
}

func newDocument() (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func writeTitle(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(26, 35, 126)
	pdf.MultiCell(0, 10, tr(title), "", "C", false)
	pdf.Ln(6)
}

func heading(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(21, 101, 192)
	pdf.MultiCell(0, 7, tr(text), "", "L", false)
	pdf.Ln(1)
}

func body(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 6, tr(text), "", "L", false)
}

// groupBySecond renders selected words as "[H:MM:SS] text" lines, one line
// per second that carries speech.
func groupBySecond(words []models.Word) []string {
	grouped := make(map[int][]string)
	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		sec := int(w.Start)
		grouped[sec] = append(grouped[sec], text)
	}

	secs := make([]int, 0, len(grouped))
	for sec := range grouped {
		secs = append(secs, sec)
	}
	sort.Ints(secs)

	lines := make([]string, 0, len(secs))
	for _, sec := range secs {
		lines = append(lines, fmt.Sprintf("[%s] %s", formatTimestamp(float64(sec)), strings.Join(grouped[sec], " ")))
	}
	return lines
}

func joinWords(words []models.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, strings.TrimSpace(w.Word))
	}
	return strings.Join(parts, " ")
}

func displayTitle(rec models.VideoRecord) string {
	if rec.Title == "" {
		return "Untitled"
	}
	return rec.Title
}

// formatTimestamp renders whole seconds as H:MM:SS.
func formatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
