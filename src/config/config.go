package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"wcolor/src/colormodel"
)

const (
	FormatEnvVar      = "WCOLOR_FORMAT"
	SizeEnvVar        = "WCOLOR_SIZE"
	IntervalEnvVar    = "WCOLOR_INTERVAL_MS"
	FileLoggingEnvVar = "ENABLE_FILE_LOGGING"

	DefaultFormat   = "HEX"
	DefaultSize     = 24
	MaxSize         = 255
	DefaultInterval = 5 * time.Millisecond
)

var ErrInvalidSize = errors.New("invalid preview size")

// Config holds the defaults taken from the environment. Command-line flags
// override every field.
type Config struct {
	Format            string
	Size              int
	Interval          time.Duration
	EnableFileLogging bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Format:            getEnvWithDefault(FormatEnvVar, DefaultFormat),
		Size:              DefaultSize,
		Interval:          DefaultInterval,
		EnableFileLogging: strings.ToLower(os.Getenv(FileLoggingEnvVar)) == "true",
	}

	if v := os.Getenv(SizeEnvVar); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 && n <= MaxSize {
			cfg.Size = n
		} else {
			log.Printf("CONFIG: ignoring %s=%q, using %d", SizeEnvVar, v, DefaultSize)
		}
	}

	if v := os.Getenv(IntervalEnvVar); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.Interval = time.Duration(n) * time.Millisecond
		} else {
			log.Printf("CONFIG: ignoring %s=%q, using %v", IntervalEnvVar, v, DefaultInterval)
		}
	}

	return cfg, nil
}

// Flags are the raw command-line settings.
type Flags struct {
	Format    string
	NoPreview bool
	Clipboard bool
	Size      int
	Interval  time.Duration
	Verbose   bool
	LogFile   bool
}

// Options is the validated configuration for one run.
type Options struct {
	Format    colormodel.Format
	Preview   bool
	Size      int
	Clipboard bool
	Interval  time.Duration
	Verbose   bool
	LogFile   bool
}

// Resolve validates f. It touches no OS resources, so a bad format is
// reported before anything is created.
func Resolve(f Flags) (Options, error) {
	format, err := colormodel.ParseFormat(f.Format)
	if err != nil {
		return Options{}, err
	}
	if f.Size < 0 || f.Size > MaxSize {
		return Options{}, fmt.Errorf("%w: %d (want 0-%d)", ErrInvalidSize, f.Size, MaxSize)
	}
	interval := f.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return Options{
		Format:    format,
		Preview:   !f.NoPreview && f.Size > 0,
		Size:      f.Size,
		Clipboard: f.Clipboard,
		Interval:  interval,
		Verbose:   f.Verbose,
		LogFile:   f.LogFile,
	}, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
