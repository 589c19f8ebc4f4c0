package preview

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the preview server settings.
type Config struct {
	// IconRoot is the weather icon repository the table is built from.
	IconRoot string

	Frames     int
	Workers    int
	Static     bool
	Rasterizer string

	// RebuildInterval controls how often the table is rebuilt from the sources (0 = never).
	RebuildInterval time.Duration

	BaseURL string
	Port    string
}

// LoadConfig reads the configuration from the environment, loading a .env file when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &Config{}

	cfg.IconRoot = os.Getenv("WXICONS_ROOT")
	if cfg.IconRoot == "" {
		return nil, fmt.Errorf("WXICONS_ROOT is not set")
	}

	cfg.Frames = getenvInt("WXICONS_FRAMES", 10)
	cfg.Workers = getenvInt("WXICONS_WORKERS", 1)
	cfg.Rasterizer = getenvDefault("WXICONS_RASTERIZER", "svg")

	static, err := strconv.ParseBool(getenvDefault("WXICONS_STATIC", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid WXICONS_STATIC: %w", err)
	}
	cfg.Static = static

	interval, err := time.ParseDuration(getenvDefault("WXICONS_REBUILD_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WXICONS_REBUILD_INTERVAL: %w", err)
	}
	cfg.RebuildInterval = interval

	cfg.BaseURL = os.Getenv("WXICONS_BASE_URL")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
