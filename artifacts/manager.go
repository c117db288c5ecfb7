// Package artifacts owns the on-disk files tied to one video record: the
// uploaded video, its thumbnail, and its report documents.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/models"
)

const thumbnailWidth = 320

// Metadata is the technical metadata ffprobe reports for a container.
type Metadata struct {
	Duration   float64
	Resolution string
	FPS        float64
	FrameCount int
}

// Manager creates and deletes the three artifacts of a record, keeping their
// filenames in the shapes the rest of the system looks up:
// vid{id}{ext}, thumb_{id}.jpg, video_{id}[_interval_{s}_{e}]_{ts}.pdf.
type Manager struct {
	UploadDir    string
	ThumbnailDir string
	ReportDir    string
	Log          *logrus.Logger
}

// NewManager creates the artifact directories if needed.
func NewManager(uploadDir, thumbnailDir, reportDir string, log *logrus.Logger) (*Manager, error) {
	m := &Manager{UploadDir: uploadDir, ThumbnailDir: thumbnailDir, ReportDir: reportDir, Log: log}
	for _, dir := range []string{uploadDir, thumbnailDir, reportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact directory %s: %w", dir, err)
		}
	}
	return m, nil
}

// VideoFilename returns the upload filename for an id and extension.
func VideoFilename(id, ext string) string {
	return fmt.Sprintf("vid%s%s", id, ext)
}

// ThumbnailFilename returns the thumbnail filename for an id.
func ThumbnailFilename(id string) string {
	return fmt.Sprintf("thumb_%s.jpg", id)
}

// SaveUpload writes the uploaded bytes under a fresh id-derived filename and
// forces them durably to storage before returning.
func (m *Manager) SaveUpload(data []byte, id, ext string) (string, error) {
	filename := VideoFilename(id, ext)
	path := filepath.Join(m.UploadDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync upload file: %w", err)
	}
	m.Log.Infof("Saved upload %s (%d bytes)", filename, len(data))
	return filename, nil
}

// VideoPath resolves an upload filename inside the upload directory.
func (m *Manager) VideoPath(filename string) string {
	return filepath.Join(m.UploadDir, filename)
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}

// ExtractMetadata opens the media container with ffprobe. A container that
// cannot be opened is a terminal error for the whole upload; ingestion does
// not continue without technical metadata.
func (m *Manager) ExtractMetadata(ctx context.Context, path string) (Metadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Metadata{}, fmt.Errorf("ffprobe failed: %v, stderr: %s", err, stderr.String())
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &probed); err != nil {
		return Metadata{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	meta := Metadata{}
	if probed.Format.Duration != "" {
		d, err := strconv.ParseFloat(probed.Format.Duration, 64)
		if err != nil {
			return Metadata{}, fmt.Errorf("parse duration %q: %w", probed.Format.Duration, err)
		}
		meta.Duration = d
	}

	for _, s := range probed.Streams {
		if s.CodecType != "video" {
			continue
		}
		meta.Resolution = fmt.Sprintf("%dx%d", s.Width, s.Height)
		meta.FPS = parseFrameRate(s.RFrameRate)
		if s.NbFrames != "" {
			if n, err := strconv.Atoi(s.NbFrames); err == nil {
				meta.FrameCount = n
			}
		}
		break
	}
	if meta.Resolution == "" {
		return Metadata{}, fmt.Errorf("no video stream in %s", filepath.Base(path))
	}
	if meta.FrameCount == 0 && meta.FPS > 0 {
		meta.FrameCount = int(meta.Duration * meta.FPS)
	}
	return meta, nil
}

// parseFrameRate resolves ffprobe's "30000/1001" rational form.
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

// GenerateThumbnail extracts one representative still and writes it as
// thumb_{id}.jpg, resized to a fixed width with aspect ratio preserved. The
// frame is picked uniformly at random from the middle 80% of the frame range
// to avoid black leader and trailer frames. Callers treat failure as
// non-fatal.
func (m *Manager) GenerateThumbnail(ctx context.Context, videoPath, id string, meta Metadata) (string, error) {
	if meta.FrameCount <= 0 || meta.FPS <= 0 {
		return "", fmt.Errorf("invalid frame count %d or fps %.2f for %s", meta.FrameCount, meta.FPS, filepath.Base(videoPath))
	}

	startFrame := int(float64(meta.FrameCount) * 0.1)
	endFrame := int(float64(meta.FrameCount) * 0.9)
	frame := meta.FrameCount / 2
	if startFrame < endFrame {
		frame = startFrame + rand.Intn(endFrame-startFrame)
	}
	seek := float64(frame) / meta.FPS

	filename := ThumbnailFilename(id)
	outPath := filepath.Join(m.ThumbnailDir, filename)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-ss", fmt.Sprintf("%.3f", seek),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", thumbnailWidth),
		"-q:v", "4",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg thumbnail extraction failed: %v, stderr: %s", err, stderr.String())
	}
	m.Log.Infof("Generated thumbnail %s from frame %d", filename, frame)
	return filename, nil
}

// DeleteArtifacts removes the video, thumbnail and report files referenced by
// the record. Missing files are not an error; the removal is best effort.
func (m *Manager) DeleteArtifacts(rec models.VideoRecord) {
	m.DeleteMediaArtifacts(rec)
	if rec.PDFFile != "" {
		m.removeIfPresent(filepath.Join(m.ReportDir, rec.PDFFile))
	}
}

// DeleteMediaArtifacts removes only the video and thumbnail files. Bulk
// cleanup leaves report documents behind.
func (m *Manager) DeleteMediaArtifacts(rec models.VideoRecord) {
	if rec.Filename != "" {
		m.removeIfPresent(filepath.Join(m.UploadDir, rec.Filename))
	}
	if rec.Thumbnail != "" {
		m.removeIfPresent(filepath.Join(m.ThumbnailDir, rec.Thumbnail))
	}
}

func (m *Manager) removeIfPresent(path string) {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		m.Log.Warnf("Failed to remove %s: %v", path, err)
	}
}

// FileSizeMB returns the file's size in megabytes, rounded to two decimals.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	mb := float64(info.Size()) / (1024 * 1024)
	return math.Round(mb*100) / 100, nil
}
