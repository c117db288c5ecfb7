package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/columnfella/Transcripting-webapp/artifacts"
	"github.com/columnfella/Transcripting-webapp/models"
	"github.com/columnfella/Transcripting-webapp/pipeline"
	"github.com/columnfella/Transcripting-webapp/utils"
)

const transcriptSummaryLimit = 500

// UploadVideo runs the full ingestion pipeline for one uploaded file: save,
// extract metadata, thumbnail, transcribe and translate, render the initial
// report, persist the merged record. Metadata extraction failure aborts the
// request; every later stage degrades into the record and a warnings field
// instead of failing the upload.
func (h *ApplicationHandler) UploadVideo(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No video file part")
	}
	if fileHeader.Filename == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No selected file")
	}
	title := c.FormValue("title", "Untitled")

	src, err := fileHeader.Open()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error opening upload: %v", err))
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error reading upload: %v", err))
	}

	h.Log.Infof("Ingesting video %q (%d bytes)", fileHeader.Filename, len(data))

	id, err := h.Store.ReserveID()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not allocate video id: %v", err))
	}

	ext := filepath.Ext(fileHeader.Filename)
	filename, err := h.Artifacts.SaveUpload(data, id, ext)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not save video: %v", err))
	}
	videoPath := h.Artifacts.VideoPath(filename)

	meta, err := h.Artifacts.ExtractMetadata(c.Context(), videoPath)
	if err != nil {
		h.Log.Errorf("Metadata extraction failed for %s: %v", filename, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Metadata extraction failed: %v", err))
	}

	sizeMB, err := artifacts.FileSizeMB(videoPath)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not stat saved video: %v", err))
	}

	var warnings []string

	thumbnail, err := h.Artifacts.GenerateThumbnail(c.Context(), videoPath, id, meta)
	if err != nil {
		h.Log.Warnf("Failed to generate thumbnail for %s: %v", filename, err)
		warnings = append(warnings, fmt.Sprintf("thumbnail generation failed: %v", err))
		thumbnail = ""
	}

	h.Log.Info("Starting transcription...")
	result := h.Pipeline.Run(c.Context(), videoPath)
	warnings = append(warnings, result.Warnings...)

	rec := models.VideoRecord{
		ID:                id,
		Filename:          filename,
		Title:             title,
		Thumbnail:         thumbnail,
		UploadDate:        time.Now().UTC().Format(time.RFC3339),
		SizeMB:            sizeMB,
		Duration:          meta.Duration,
		DurationFormatted: utils.FormatDuration(meta.Duration),
		Resolution:        meta.Resolution,
		FPS:               meta.FPS,
		FrameCount:        meta.FrameCount,
		Transcript:        result.Transcript,
		Language:          result.Language,
		Translated:        result.Translated,
	}

	if pdfName, err := h.Reports.RenderFull(rec); err != nil {
		h.Log.Errorf("Report generation failed for video %s: %v", id, err)
		warnings = append(warnings, fmt.Sprintf("report generation failed: %v", err))
	} else {
		rec.PDFFile = pdfName
	}

	if err := h.Store.Append(rec); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not persist video record: %v", err))
	}
	h.Log.Infof("Saved video %s (title %q)", filename, title)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Video saved as %s", filename),
		"metadata": fiber.Map{
			"ID":                 id,
			"title":              title,
			"filename":           filename,
			"thumbnail":          thumbnail,
			"duration":           meta.Duration,
			"resolution":         meta.Resolution,
			"transcript_summary": transcriptSummary(result.Transcript),
			"upload_date":        rec.UploadDate,
			"size_mb":            sizeMB,
			"pdffile":            rec.PDFFile,
		},
		"warnings":     warnings,
		"total_videos": id,
	})
}

func transcriptSummary(t models.Transcript) string {
	if t.Failed() {
		return fmt.Sprintf("Transcription failed: %s", t.Error)
	}
	if len(t.Text) > transcriptSummaryLimit {
		return t.Text[:transcriptSummaryLimit] + "..."
	}
	return t.Text
}

// ListVideos returns the whole metadata document.
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	doc, err := h.Store.Load()
	if err != nil {
		h.Log.Errorf("Error fetching videos: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	h.Log.Infof("Fetched all video metadata (%d videos)", len(doc.Videos))
	return c.Status(fiber.StatusOK).JSON(doc)
}

// ListVideoMetadata returns every record with its transcript payloads
// stripped.
func (h *ApplicationHandler) ListVideoMetadata(c *fiber.Ctx) error {
	doc, err := h.Store.Load()
	if err != nil {
		h.Log.Errorf("Error fetching video metadata: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	stripped := make([]models.VideoRecord, len(doc.Videos))
	for i, rec := range doc.Videos {
		stripped[i] = rec.MetadataOnly()
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"videos":        stripped,
		"total_uploads": doc.TotalUploads,
	})
}

// GetTranscript returns the original-language transcript for one video.
func (h *ApplicationHandler) GetTranscript(c *fiber.Ctx) error {
	id := c.Params("id")
	rec, err := h.Store.Find(id)
	if err != nil {
		return h.respondStoreError(c, id, err)
	}
	h.Log.Infof("Transcript served for video %s", id)
	return c.Status(fiber.StatusOK).JSON(rec.Transcript)
}

// GetTranslatedTranscript returns the windowed translation for one video.
func (h *ApplicationHandler) GetTranslatedTranscript(c *fiber.Ctx) error {
	id := c.Params("id")
	rec, err := h.Store.Find(id)
	if err != nil {
		return h.respondStoreError(c, id, err)
	}
	if rec.Translated.Text == "" && len(rec.Translated.Words) == 0 {
		h.Log.Warnf("No translated transcript for video %s", id)
		return utils.RespondWithError(c, fiber.StatusNotFound, "No translated transcript available")
	}
	return c.Status(fiber.StatusOK).JSON(rec.Translated)
}

// GetVideoLanguage re-detects the language of the stored transcript text,
// falling back to "eng" when the video or its text is missing.
func (h *ApplicationHandler) GetVideoLanguage(c *fiber.Ctx) error {
	id := c.Params("id")
	rec, err := h.Store.Find(id)
	if err != nil || rec.Transcript.Text == "" || rec.Transcript.Failed() {
		h.Log.Warnf("No usable transcript for video %s, returning default language", id)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"language": pipeline.DefaultLanguage})
	}
	lang := pipeline.DetectLanguage(rec.Transcript.Text)
	h.Log.Infof("Detected language for video %s: %s", id, lang)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"language": lang})
}
