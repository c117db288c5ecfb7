package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/columnfella/Transcripting-webapp/artifacts"
	"github.com/columnfella/Transcripting-webapp/deletion"
	"github.com/columnfella/Transcripting-webapp/models"
	"github.com/columnfella/Transcripting-webapp/pipeline"
	"github.com/columnfella/Transcripting-webapp/report"
	"github.com/columnfella/Transcripting-webapp/store"
)

type noopTranscriber struct{}

func (noopTranscriber) Transcribe(ctx context.Context, videoPath string) (models.Transcript, error) {
	return models.Transcript{}, nil
}

type noopTranslator struct{}

func (noopTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return text, nil
}

type testEnv struct {
	app   *fiber.App
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	root := t.TempDir()
	st, err := store.New(filepath.Join(root, "metadata.json"), log)
	require.NoError(t, err)

	mgr, err := artifacts.NewManager(
		filepath.Join(root, "uploads"),
		filepath.Join(root, "thumbnails"),
		filepath.Join(root, "reports"),
		log,
	)
	require.NoError(t, err)

	pl := pipeline.New(noopTranscriber{}, noopTranslator{}, time.Minute, log)
	rg := report.NewGenerator(st, filepath.Join(root, "reports"), log)
	del := deletion.NewCoordinator(st, mgr, log)
	h := NewApplicationHandler(st, mgr, pl, rg, del, log)

	app := fiber.New()
	app.Post("/upload-video", h.UploadVideo)
	app.Get("/videos", h.ListVideos)
	app.Get("/videos/metadata", h.ListVideoMetadata)
	app.Get("/video/:id/transcript", h.GetTranscript)
	app.Post("/translate-transcript/:id", h.GetTranslatedTranscript)
	app.Get("/video-language/:id", h.GetVideoLanguage)
	app.Post("/edit-video-title", h.EditVideoTitle)
	app.Delete("/delete-video/:id", h.DeleteVideo)
	app.Delete("/delete-videos", h.DeleteVideoBatch)
	app.Post("/pdf-interval/:id", h.GenerateIntervalReport)

	return &testEnv{app: app, store: st}
}

func (e *testEnv) seed(t *testing.T, rec models.VideoRecord) models.VideoRecord {
	t.Helper()
	id, err := e.store.ReserveID()
	require.NoError(t, err)
	rec.ID = id
	require.NoError(t, e.store.Append(rec))
	return rec
}

func (e *testEnv) do(t *testing.T, method, target string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func TestUploadVideoMissingFilePart(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/upload-video", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "No video file part")
}

func TestListVideos(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, models.VideoRecord{Title: "First"})

	resp, body := e.do(t, http.MethodGet, "/videos", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", body["total_uploads"])
	require.Len(t, body["videos"], 1)
}

func TestListVideoMetadataStripsTranscripts(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, models.VideoRecord{
		Title: "First",
		Transcript: models.Transcript{
			Text:  "hello",
			Words: []models.Word{{Start: 0, End: 1, Word: "hello"}},
		},
	})

	resp, body := e.do(t, http.MethodGet, "/videos/metadata", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	videos, ok := body["videos"].([]any)
	require.True(t, ok)
	require.Len(t, videos, 1)
	first, ok := videos[0].(map[string]any)
	require.True(t, ok)
	transcript, ok := first["transcript"].(map[string]any)
	require.True(t, ok)
	assert.Empty(t, transcript["text"])
}

func TestGetTranscript(t *testing.T) {
	e := newTestEnv(t)
	rec := e.seed(t, models.VideoRecord{Transcript: models.Transcript{Text: "hello world"}})

	resp, body := e.do(t, http.MethodGet, "/video/"+rec.ID+"/transcript", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello world", body["text"])

	resp, body = e.do(t, http.MethodGet, "/video/404/transcript", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Video not found", body["message"])
}

func TestGetTranslatedTranscript(t *testing.T) {
	e := newTestEnv(t)
	withTranslation := e.seed(t, models.VideoRecord{
		Translated: models.TranslatedTranscript{
			Text:  "bonjour",
			Words: []models.TranslatedChunk{{Start: 0, End: 30, Text: "bonjour"}},
		},
	})
	without := e.seed(t, models.VideoRecord{})

	resp, body := e.do(t, http.MethodPost, "/translate-transcript/"+withTranslation.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "bonjour", body["text"])

	resp, body = e.do(t, http.MethodPost, "/translate-transcript/"+without.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No translated transcript available", body["message"])
}

func TestGetVideoLanguage(t *testing.T) {
	e := newTestEnv(t)
	french := e.seed(t, models.VideoRecord{Transcript: models.Transcript{
		Text: "le renard brun saute par-dessus le chien paresseux chaque matin dans le jardin",
	}})
	failed := e.seed(t, models.VideoRecord{Transcript: models.Transcript{
		Text:  "Transcription failed",
		Error: "provider down",
	}})

	resp, body := e.do(t, http.MethodGet, "/video-language/"+french.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "fr", body["language"])

	// A failed transcript and an unknown id both fall back to the default.
	resp, body = e.do(t, http.MethodGet, "/video-language/"+failed.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "eng", body["language"])

	resp, body = e.do(t, http.MethodGet, "/video-language/404", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "eng", body["language"])
}

func TestEditVideoTitle(t *testing.T) {
	e := newTestEnv(t)
	rec := e.seed(t, models.VideoRecord{Title: "Old"})

	resp, body := e.do(t, http.MethodPost, "/edit-video-title",
		map[string]string{"id": rec.ID, "title": "New"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Title updated successfully", body["message"])

	updated, err := e.store.Find(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	resp, _ = e.do(t, http.MethodPost, "/edit-video-title",
		map[string]string{"id": "404", "title": "New"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/edit-video-title",
		map[string]string{"id": rec.ID})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteVideo(t *testing.T) {
	e := newTestEnv(t)
	rec := e.seed(t, models.VideoRecord{})

	resp, body := e.do(t, http.MethodDelete, "/delete-video/"+rec.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "Deleted video "+rec.ID)

	resp, _ = e.do(t, http.MethodDelete, "/delete-video/"+rec.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteVideoBatch(t *testing.T) {
	e := newTestEnv(t)
	a := e.seed(t, models.VideoRecord{})
	b := e.seed(t, models.VideoRecord{})

	resp, body := e.do(t, http.MethodDelete, "/delete-videos",
		map[string][]string{"ids": {a.ID, "404", b.ID}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["deleted"])
	failures, ok := body["failures"].([]any)
	require.True(t, ok)
	require.Len(t, failures, 1)

	resp, _ = e.do(t, http.MethodDelete, "/delete-videos", map[string][]string{"ids": {}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateIntervalReport(t *testing.T) {
	e := newTestEnv(t)
	rec := e.seed(t, models.VideoRecord{
		Title:    "Meeting",
		Duration: 60,
		Transcript: models.Transcript{
			Text: "hello world",
			Words: []models.Word{
				{Start: 1, End: 1.5, Word: "hello"},
				{Start: 2, End: 2.5, Word: "world"},
			},
		},
	})

	resp, body := e.do(t, http.MethodPost, "/pdf-interval/"+rec.ID,
		map[string]float64{"start": 0, "end": 10})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Regexp(t, `^video_`+rec.ID+`_interval_0_10_\d{14}\.pdf$`, body["pdffile"])

	resp, _ = e.do(t, http.MethodPost, "/pdf-interval/"+rec.ID,
		map[string]float64{"start": 10, "end": 5})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/pdf-interval/"+rec.ID,
		map[string]float64{"start": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/pdf-interval/404",
		map[string]float64{"start": 0, "end": 10})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
