package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ViewerWindow = "window"
	ViewerWeb    = "web"

	LogModeDebug   = "debug"
	LogModeRelease = "release"
)

// ErrMissingDirectory is returned by Load when a required directory flag is absent.
var ErrMissingDirectory = errors.New("both --image_dir and --label_dir are required")

type Config struct {
	ImageDir     string
	LabelDir     string
	Viewer       string // window or web
	WebAddr      string // listen address of the web viewer
	ReportDB     string // SQLite inspection log, empty disables it
	LogDirectory string // empty logs to stdout only
	LogMode      string
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load parses command line arguments (without the program name) into a Config.
// Optional settings fall back to POLYVIZ_* environment variables.
func Load(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("polyviz", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := &Config{}
	fs.StringVar(&cfg.ImageDir, "image_dir", "", "Path to the directory containing images.")
	fs.StringVar(&cfg.LabelDir, "label_dir", "", "Path to the directory containing YOLO polygon annotation text files.")
	fs.StringVar(&cfg.Viewer, "viewer", getEnv("POLYVIZ_VIEWER", ViewerWindow), "Viewer used to present images: window or web.")
	fs.StringVar(&cfg.WebAddr, "web_addr", getEnv("POLYVIZ_WEB_ADDR", ":8090"), "Listen address of the web viewer.")
	fs.StringVar(&cfg.ReportDB, "report_db", getEnv("POLYVIZ_REPORT_DB", ""), "Optional SQLite file recording the inspection run.")
	fs.StringVar(&cfg.LogDirectory, "log_dir", getEnv("POLYVIZ_LOG_DIR", ""), "Optional directory for log files.")
	fs.StringVar(&cfg.LogMode, "log_mode", getEnv("POLYVIZ_LOG_MODE", LogModeDebug), "Log mode: debug or release.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(output, "polyviz: %v\n", err)
		fs.Usage()
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and enumerated values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ImageDir) == "" || strings.TrimSpace(c.LabelDir) == "" {
		return ErrMissingDirectory
	}

	switch c.Viewer {
	case ViewerWindow, ViewerWeb:
	default:
		return fmt.Errorf("unknown viewer %q (want %s or %s)", c.Viewer, ViewerWindow, ViewerWeb)
	}

	switch c.LogMode {
	case LogModeDebug, LogModeRelease:
	default:
		return fmt.Errorf("unknown log mode %q (want %s or %s)", c.LogMode, LogModeDebug, LogModeRelease)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
