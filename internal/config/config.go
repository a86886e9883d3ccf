package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Geofence GeofenceConfig `yaml:"geofence"`
	Capture  CaptureConfig  `yaml:"capture"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	// Timezone of the organization; wire times (HH:MM:SS) are local to it.
	Timezone string `yaml:"timezone"`
	// LegacyForceMark transmits force_mark=1 on every check-in/out regardless
	// of the geofence outcome, matching the deployed server contract.
	LegacyForceMark bool `yaml:"legacy_force_mark"`
}

type GeofenceConfig struct {
	RadiusMeters float64 `yaml:"radius_meters"`
}

type CaptureConfig struct {
	MaxEdgePx   int `yaml:"max_edge_px"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Load(configFile string) *Config {
	godotenv.Load()

	c := &Config{
		API:      APIConfig{Timezone: "Local"},
		Geofence: GeofenceConfig{RadiusMeters: 100},
		Capture:  CaptureConfig{MaxEdgePx: 1080, JPEGQuality: 75},
		Store:    StoreConfig{Path: defaultStorePath()},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 30},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/shiftmark/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.API.BaseURL, "SHIFTMARK_API_URL")
	envOverride(&c.API.Token, "SHIFTMARK_TOKEN")
	envOverride(&c.API.Timezone, "SHIFTMARK_TZ")
	envOverride(&c.Store.Path, "SHIFTMARK_DB")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverrideFloat(&c.Geofence.RadiusMeters, "SHIFTMARK_GEOFENCE_RADIUS")

	return c
}

// Location resolves the organization timezone, falling back to the
// process-local zone when unset or unknown.
func (c *Config) Location() *time.Location {
	if c.API.Timezone == "" || c.API.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.API.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	if dir := filepath.Dir(c.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(c.Store.Path), &gorm.Config{
		Logger: gormlog.Default.LogMode(gormlog.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return db, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "shiftmark.db"
	}
	return filepath.Join(home, ".shiftmark", "shiftmark.db")
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
