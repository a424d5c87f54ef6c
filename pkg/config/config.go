// Package config loads settings from a YAML file, an optional .env file and
// GEONOTE_* environment variables, in increasing priority. Command-line flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/utils"
)

type Config struct {
	DBPath        string        `yaml:"db_path"`
	WAL           bool          `yaml:"wal"`
	Sync          string        `yaml:"sync"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	MediaDir      string        `yaml:"media_dir"`
	Log           Log           `yaml:"log"`
	Device        Device        `yaml:"device"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

type Device struct {
	// Permissions is a comma-separated list of granted capabilities: location, camera.
	Permissions     string   `yaml:"permissions"`
	LocationCommand []string `yaml:"location_command"`
	CameraCommand   []string `yaml:"camera_command"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		DBPath:        utils.GetDefaultDBPathOnly(),
		WAL:           true,
		Sync:          "NORMAL",
		WatchDebounce: notes.DefaultWatchDebounce,
		MediaDir:      utils.GetDefaultMediaDir(),
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 28,
			Compress:   true,
			Console:    true,
		},
		Device: Device{
			Permissions:     "location,camera",
			LocationCommand: []string{"termux-location", "-p", "gps", "-r", "once"},
			CameraCommand:   []string{"termux-camera-photo"},
		},
	}
}

// Load reads path (the default config path when empty; a missing file is fine),
// then envFiles (".env" when none given; missing files are skipped), then the
// process environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = utils.GetDefaultConfigPath()
	}
	if err := readFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return Config{}, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file '%s': %w", f, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	return nil
}

func getEnv(key string) (string, bool) {
	value, ok := os.LookupEnv("GEONOTE_" + key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func applyEnv(cfg *Config) error {
	if v, ok := getEnv("DB"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnv("WAL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid GEONOTE_WAL '%s': %w", v, err)
		}
		cfg.WAL = b
	}
	if v, ok := getEnv("SYNC"); ok {
		cfg.Sync = v
	}
	if v, ok := getEnv("WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GEONOTE_WATCH_DEBOUNCE '%s': %w", v, err)
		}
		cfg.WatchDebounce = d
	}
	if v, ok := getEnv("MEDIA_DIR"); ok {
		cfg.MediaDir = v
	}
	if v, ok := getEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := getEnv("LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := getEnv("PERMISSIONS"); ok {
		cfg.Device.Permissions = v
	}
	if v, ok := getEnv("LOCATION_CMD"); ok {
		cfg.Device.LocationCommand = strings.Fields(v)
	}
	if v, ok := getEnv("CAMERA_CMD"); ok {
		cfg.Device.CameraCommand = strings.Fields(v)
	}
	return nil
}
