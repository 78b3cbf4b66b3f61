package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for everything the server needs to run out of the box
const (
	DefaultPort             = 8080
	DefaultQueueFile        = "queue.json"
	DefaultYTDLPPath        = "yt-dlp"
	DefaultWatchURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Config holds the full server configuration. Values come from an optional
// YAML file, overridden by environment variables, overridden by CLI flags.
type Config struct {
	Port             int    `yaml:"port"`
	DownloadDir      string `yaml:"download_dir"`
	QueueFile        string `yaml:"queue_file"`
	YTDLPPath        string `yaml:"ytdlp_path"`
	CORSOrigins      string `yaml:"cors_origins"`
	WatchURLTemplate string `yaml:"watch_url_template"`
	ShowProgressBar  bool   `yaml:"show_progress_bar"`
	Debug            bool   `yaml:"debug"`
}

// Default returns a configuration with built-in defaults applied
func Default() *Config {
	return &Config{
		Port:             DefaultPort,
		DownloadDir:      defaultDownloadDir(),
		QueueFile:        DefaultQueueFile,
		YTDLPPath:        DefaultYTDLPPath,
		WatchURLTemplate: DefaultWatchURLTemplate,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration
func (c *Config) applyEnv() {
	if v := os.Getenv("DLQ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DLQ_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("DLQ_QUEUE_FILE"); v != "" {
		c.QueueFile = v
	}
	if v := os.Getenv("DLQ_YTDLP_PATH"); v != "" {
		c.YTDLPPath = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = v
	}
	if v := os.Getenv("DLQ_DEBUG"); v == "1" || v == "true" {
		c.Debug = true
	}
}

// OutputTemplate returns the yt-dlp output template rooted in the download dir
func (c *Config) OutputTemplate() string {
	return filepath.Join(c.DownloadDir, "%(title)s.%(ext)s")
}

func defaultDownloadDir() string {
	if custom := os.Getenv("DLQ_DOWNLOAD_DIR"); custom != "" {
		return custom
	}
	return filepath.Join(".", "downloads")
}
