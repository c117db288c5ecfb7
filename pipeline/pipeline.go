// Package pipeline turns raw media into an original-language transcript and a
// windowed translation, degrading gracefully when a provider fails.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/interval"
	"github.com/columnfella/Transcripting-webapp/models"
)

const (
	// TranslationWindow is the fixed width of one translation call.
	TranslationWindow = 30.0
	// openEnd marks the single whole-text chunk used when a transcript
	// carries no segment timing at all.
	openEnd = 1e9
	// FailedTranscriptText is the sentinel stored in place of real text when
	// transcription fails.
	FailedTranscriptText = "Transcription failed"
)

// Transcriber produces a timestamped transcript from a media file.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath string) (models.Transcript, error)
}

// Translator translates text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Result is the pipeline's output. It is always well formed: a failed stage
// leaves an explicit marker in the record instead of aborting, and Warnings
// names each stage that degraded so responses can surface it.
type Result struct {
	Transcript models.Transcript
	Translated models.TranslatedTranscript
	Language   string
	Warnings   []string
}

// Pipeline orchestrates transcription, language detection and windowed
// translation. Provider calls are bounded by Timeout; there are no retries, a
// transient provider failure is recorded as permanent for that record.
type Pipeline struct {
	Transcriber Transcriber
	Translator  Translator
	Timeout     time.Duration
	Log         *logrus.Logger
}

// New returns a Pipeline with the given collaborators.
func New(tr Transcriber, tl Translator, timeout time.Duration, log *logrus.Logger) *Pipeline {
	return &Pipeline{Transcriber: tr, Translator: tl, Timeout: timeout, Log: log}
}

// Run executes the full pipeline for one video. It never fails past its own
// boundary: every error is folded into the Result.
func (p *Pipeline) Run(ctx context.Context, videoPath string) Result {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	transcript, err := p.Transcriber.Transcribe(ctx, videoPath)
	if err != nil {
		p.Log.Warnf("Transcription failed for %s: %v", videoPath, err)
		return Result{
			Transcript: models.Transcript{
				Text:  FailedTranscriptText,
				Error: err.Error(),
			},
			Language: DefaultLanguage,
			Warnings: []string{fmt.Sprintf("transcription failed: %v", err)},
		}
	}
	p.Log.Infof("Transcription successful: %d characters", len(transcript.Text))

	lang := DetectLanguage(transcript.Text)
	p.Log.Infof("Detected language: %s", lang)

	translated, warnings := p.translate(ctx, transcript, lang)
	return Result{
		Transcript: transcript,
		Translated: translated,
		Language:   lang,
		Warnings:   warnings,
	}
}

// translate partitions the transcript into translation windows and calls the
// provider once per non-empty window. A failed window keeps its untranslated
// source text; translation failure is never fatal to the upload.
func (p *Pipeline) translate(ctx context.Context, transcript models.Transcript, lang string) (models.TranslatedTranscript, []string) {
	target := translationTarget(lang)
	var chunks []models.TranslatedChunk
	var warnings []string
	failed := 0

	if len(transcript.Segments) > 0 {
		for _, bucket := range interval.AssignSegments(transcript.Segments, TranslationWindow) {
			texts := make([]string, 0, len(bucket.Segments))
			for _, seg := range bucket.Segments {
				texts = append(texts, seg.Text)
			}
			text := strings.TrimSpace(strings.Join(texts, " "))
			if text == "" {
				continue
			}
			out, err := p.Translator.Translate(ctx, text, "auto", target)
			if err != nil {
				p.Log.Warnf("Window %.0f-%.0fs translation failed: %v", bucket.Start, bucket.Start+TranslationWindow, err)
				out = text
				failed++
			}
			chunks = append(chunks, models.TranslatedChunk{
				Start: bucket.Start,
				End:   bucket.Start + TranslationWindow,
				Text:  out,
			})
		}
	} else {
		p.Log.Warn("No segments found; translating the whole transcript as one chunk")
		out, err := p.Translator.Translate(ctx, transcript.Text, "auto", target)
		if err != nil {
			p.Log.Warnf("Whole-text translation failed: %v", err)
			out = transcript.Text
			failed++
		}
		chunks = append(chunks, models.TranslatedChunk{Start: 0, End: openEnd, Text: out})
	}

	if failed > 0 {
		warnings = append(warnings, fmt.Sprintf("translation degraded: %d window(s) kept their original text", failed))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return models.TranslatedTranscript{
		Text:  strings.Join(texts, " "),
		Words: chunks,
	}, warnings
}
