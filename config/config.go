// Package config loads server configuration and constructs the shared logger.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the server and the admin CLI. Values come
// from an optional YAML file, with environment variables taking precedence.
type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	UploadDir       string        `yaml:"upload_dir"`
	ThumbnailDir    string        `yaml:"thumbnail_dir"`
	ReportDir       string        `yaml:"report_dir"`
	MetadataFile    string        `yaml:"metadata_file"`
	GroqAPIKey      string        `yaml:"groq_api_key"`
	GroqModel       string        `yaml:"groq_model"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
}

// DefaultConfigFile is looked up relative to the working directory.
const DefaultConfigFile = "config.yaml"

// Load reads the config file if present and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:      ":5000",
		UploadDir:       "uploads",
		ThumbnailDir:    "thumbnails",
		ReportDir:       "vid_pdfs",
		MetadataFile:    "metadata.json",
		GroqModel:       "whisper-large-v3-turbo",
		ProviderTimeout: 120 * time.Second,
		LogLevel:        "info",
	}

	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults plus env are enough to run.
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.ThumbnailDir, "THUMBNAIL_DIR")
	setString(&cfg.ReportDir, "REPORT_DIR")
	setString(&cfg.MetadataFile, "METADATA_FILE")
	setString(&cfg.GroqAPIKey, "GROQ_API_KEY")
	setString(&cfg.GroqModel, "GROQ_MODEL")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ProviderTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogJSON = b
		}
	}
}
