// Package providers holds the HTTP clients for the external transcription and
// translation services the pipeline depends on.
package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/models"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultWhisperModel = "whisper-large-v3-turbo"
)

// GroqTranscriber calls a Groq-hosted Whisper endpoint with the raw video
// file. Whisper accepts media containers directly, so no audio extraction
// happens on our side.
type GroqTranscriber struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
	Log     *logrus.Logger
}

// NewGroqTranscriber returns a transcriber against the public Groq endpoint.
func NewGroqTranscriber(apiKey string, log *logrus.Logger) *GroqTranscriber {
	return &GroqTranscriber{
		APIKey:  apiKey,
		Model:   defaultWhisperModel,
		BaseURL: defaultGroqBaseURL,
		Client:  &http.Client{Timeout: 5 * time.Minute},
		Log:     log,
	}
}

type verboseTranscription struct {
	Text  string `json:"text"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

// Transcribe uploads the video and returns word- and segment-level timestamps.
func (g *GroqTranscriber) Transcribe(ctx context.Context, videoPath string) (models.Transcript, error) {
	if g.APIKey == "" {
		return models.Transcript{}, fmt.Errorf("transcription provider API key is not configured")
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("open video for transcription: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(videoPath))
	if err != nil {
		return models.Transcript{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return models.Transcript{}, fmt.Errorf("read video for transcription: %w", err)
	}
	fields := map[string]string{
		"model":           g.Model,
		"response_format": "verbose_json",
		"temperature":     "0",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return models.Transcript{}, err
		}
	}
	for _, granularity := range []string{"word", "segment"} {
		if err := mw.WriteField("timestamp_granularities[]", granularity); err != nil {
			return models.Transcript{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return models.Transcript{}, err
	}

	url := g.BaseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return models.Transcript{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	g.Log.Infof("Sending transcription request for %s", filepath.Base(videoPath))
	resp, err := g.Client.Do(req)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return models.Transcript{}, fmt.Errorf("transcription provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var raw verboseTranscription
	if err := decodeJSON(resp.Body, &raw); err != nil {
		return models.Transcript{}, fmt.Errorf("decode transcription response: %w", err)
	}

	transcript := models.Transcript{
		Text:     raw.Text,
		Words:    make([]models.Word, 0, len(raw.Words)),
		Segments: make([]models.Segment, 0, len(raw.Segments)),
	}
	for _, w := range raw.Words {
		transcript.Words = append(transcript.Words, models.Word{Start: w.Start, End: w.End, Word: w.Word})
	}
	for _, s := range raw.Segments {
		transcript.Segments = append(transcript.Segments, models.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return transcript, nil
}
