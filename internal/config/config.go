// Package config loads runtime configuration from environment variables,
// optionally overlaid on a YAML config file. Environment always wins.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the historical tool: storage directories relative to the
// working directory, 0.6 match tolerance, 3 second cooldown.
const (
	DefaultDataDir       = "face_database"
	DefaultAttendanceDir = "attendance_logs"
	DefaultTolerance     = 0.6
	DefaultCooldownSecs  = 3
	DefaultMaxFrameSize  = 1280
	DefaultEmbeddingDim  = 128

	usersFileName = "users.json"
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Detector DetectorConfig `yaml:"detector"`
	Camera   CameraConfig   `yaml:"camera"`
	Match    MatchConfig    `yaml:"match"`
	Policy   PolicyConfig   `yaml:"policy"`
}

type StorageConfig struct {
	DataDir       string `yaml:"data_dir"`       // enrollment store directory
	AttendanceDir string `yaml:"attendance_dir"` // daily ledger segments
}

// UsersFile returns the path of the enrollment store file.
func (c *StorageConfig) UsersFile() string {
	return filepath.Join(c.DataDir, usersFileName)
}

type DetectorConfig struct {
	URL string `yaml:"url"` // face detection sidecar, defaults to http://localhost:8000
	Dim int    `yaml:"dim"` // embedding dimension, defaults to 128
}

type CameraConfig struct {
	SnapshotURL  string `yaml:"snapshot_url"`   // HTTP snapshot endpoint of the kiosk camera
	MaxFrameSize int    `yaml:"max_frame_size"` // frames are downscaled to this longer side, 0 disables
}

type MatchConfig struct {
	Tolerance float64 `yaml:"tolerance"` // maximum embedding distance for a match
}

type PolicyConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds"` // re-detection suppression window
}

// Cooldown returns the suppression window as a duration.
func (c *PolicyConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Load builds the configuration from defaults and environment variables.
func Load() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// LoadWithFile builds the configuration from defaults, the given YAML file,
// and environment variables, in that order of precedence (env wins). An
// empty path behaves like Load.
func LoadWithFile(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:       DefaultDataDir,
			AttendanceDir: DefaultAttendanceDir,
		},
		Detector: DetectorConfig{
			Dim: DefaultEmbeddingDim,
		},
		Camera: CameraConfig{
			MaxFrameSize: DefaultMaxFrameSize,
		},
		Match: MatchConfig{
			Tolerance: DefaultTolerance,
		},
		Policy: PolicyConfig{
			CooldownSeconds: DefaultCooldownSecs,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("ATTENDANCE_DIR"); v != "" {
		cfg.Storage.AttendanceDir = v
	}
	if v := os.Getenv("DETECTOR_URL"); v != "" {
		cfg.Detector.URL = v
	}
	cfg.Detector.Dim = envInt("EMBEDDING_DIM", cfg.Detector.Dim)
	if v := os.Getenv("CAMERA_URL"); v != "" {
		cfg.Camera.SnapshotURL = v
	}
	cfg.Camera.MaxFrameSize = envInt("MAX_FRAME_SIZE", cfg.Camera.MaxFrameSize)
	cfg.Match.Tolerance = envFloat("MATCH_TOLERANCE", cfg.Match.Tolerance)
	cfg.Policy.CooldownSeconds = envInt("COOLDOWN_SECONDS", cfg.Policy.CooldownSeconds)
}

// envInt reads an environment variable as a positive integer, falling back
// to the default when unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a positive float, falling back
// to the default when unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}
