package main

import (
	"os/exec"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/artifacts"
	"github.com/columnfella/Transcripting-webapp/config"
	"github.com/columnfella/Transcripting-webapp/deletion"
	"github.com/columnfella/Transcripting-webapp/handlers"
	"github.com/columnfella/Transcripting-webapp/internal/providers"
	"github.com/columnfella/Transcripting-webapp/middleware"
	"github.com/columnfella/Transcripting-webapp/pipeline"
	"github.com/columnfella/Transcripting-webapp/report"
	"github.com/columnfella/Transcripting-webapp/store"
	"github.com/columnfella/Transcripting-webapp/utils"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := config.NewLogger(cfg)

	checkDependencies(cfg, log)

	st, err := store.New(cfg.MetadataFile, log)
	if err != nil {
		log.Fatalf("Failed to open metadata store: %v", err)
	}
	mgr, err := artifacts.NewManager(cfg.UploadDir, cfg.ThumbnailDir, cfg.ReportDir, log)
	if err != nil {
		log.Fatalf("Failed to prepare artifact directories: %v", err)
	}

	transcriber := providers.NewGroqTranscriber(cfg.GroqAPIKey, log)
	transcriber.Model = cfg.GroqModel
	translator := providers.NewGoogleTranslator(log)

	pl := pipeline.New(transcriber, translator, cfg.ProviderTimeout, log)
	rg := report.NewGenerator(st, cfg.ReportDir, log)
	del := deletion.NewCoordinator(st, mgr, log)
	h := handlers.NewApplicationHandler(st, mgr, pl, rg, del, log)

	app := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, GET, OPTIONS, DELETE",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
			"message": "Video upload server is healthy",
		})
	})

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

	app.Static("/uploads", cfg.UploadDir)
	app.Static("/thumbnails", cfg.ThumbnailDir)
	app.Static("/pdf", cfg.ReportDir)

	log.Infof("Starting video upload server on %s", cfg.ListenAddr)
	log.Fatal(app.Listen(cfg.ListenAddr))
}

// checkDependencies logs, at startup, whether the external tools and provider
// credentials the pipeline needs are actually available. A missing piece is
// not fatal here; the affected stage will degrade per request instead.
func checkDependencies(cfg *config.Config, log *logrus.Logger) {
	for _, tool := range []string{"ffprobe", "ffmpeg"} {
		if _, err := exec.LookPath(tool); err != nil {
			log.Warnf("%s not found in PATH; metadata extraction and thumbnails will fail", tool)
		} else {
			log.Infof("%s: available", tool)
		}
	}
	if cfg.GroqAPIKey == "" {
		log.Warn("GROQ_API_KEY not set; transcription will fail")
	} else {
		log.Info("Transcription provider: configured")
	}
}
