package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

const (
	// MaxUniverseLimit 是任何部署都不会超过的上限。
	MaxUniverseLimit = 5000
	// ClassicMaxUniverse 对应“经典”桌面版本的 1-200 上限。
	ClassicMaxUniverse = 200
)

type Settings struct {
	Listen   string       `toml:"listen"`
	Port     int          `toml:"port"`
	BasePath string       `toml:"base_path"`
	CertFile string       `toml:"cert_file"`
	KeyFile  string       `toml:"key_file"`
	Draw     DrawConfig   `toml:"draw"`
	Jobs     JobsConfig   `toml:"jobs"`
	Locale   LocaleConfig `toml:"locale"`
}

type DrawConfig struct {
	MaxUniverse       int `toml:"max_universe"`
	DefaultUniverse   int `toml:"default_universe"`
	Retention         int `toml:"retention"`
	PreviewIntervalMs int `toml:"preview_interval_ms"`
	SettleDelayMs     int `toml:"settle_delay_ms"`
	ClearDelayMs      int `toml:"clear_delay_ms"`
}

type JobsConfig struct {
	Checkpoint  string `toml:"checkpoint"`
	SnapshotLog string `toml:"snapshot_log"`
	TimeZone    string `toml:"time_zone"`
}

type LocaleConfig struct {
	Default string `toml:"default"`
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

// LoadEnv 读取工作目录下的 .env（不存在则忽略），已有的环境变量优先。
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func GetLogLevel() logging.Level {
	if IsDebug() {
		return logging.DEBUG
	}
	level, err := logging.LogLevel(os.Getenv("LOTTO_LOG_LEVEL"))
	if err != nil {
		return logging.INFO
	}
	return level
}

func IsDebug() bool {
	return os.Getenv("LOTTO_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("LOTTO_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/x-lotto"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return filepath.Join(GetDBFolderPath(), GetName()+".db")
}

func GetSettingsPath() string {
	if p := os.Getenv("LOTTO_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(GetDBFolderPath(), GetName()+".toml")
}

func DefaultSettings() *Settings {
	return &Settings{
		Listen:   "127.0.0.1",
		Port:     2090,
		BasePath: "/",
		Draw: DrawConfig{
			MaxUniverse:       MaxUniverseLimit,
			DefaultUniverse:   90,
			Retention:         10,
			PreviewIntervalMs: 50,
			SettleDelayMs:     2000,
			ClearDelayMs:      1000,
		},
		Jobs: JobsConfig{
			Checkpoint:  "@every 5m",
			SnapshotLog: "@hourly",
			TimeZone:    "Local",
		},
		Locale: LocaleConfig{
			Default: "en-US",
		},
	}
}

// LoadSettings 读取 TOML 配置；文件不存在时返回默认配置。
// 文件里没写的字段保留默认值。
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, s.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, s.Validate()
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) normalize() {
	if s.BasePath == "" {
		s.BasePath = "/"
	}
	if !strings.HasPrefix(s.BasePath, "/") {
		s.BasePath = "/" + s.BasePath
	}
	if !strings.HasSuffix(s.BasePath, "/") {
		s.BasePath += "/"
	}
}

func (s *Settings) Validate() error {
	d := s.Draw
	if d.MaxUniverse < 1 || d.MaxUniverse > MaxUniverseLimit {
		return fmt.Errorf("draw.max_universe must be in [1, %d], got %d", MaxUniverseLimit, d.MaxUniverse)
	}
	if d.DefaultUniverse < 1 || d.DefaultUniverse > d.MaxUniverse {
		return fmt.Errorf("draw.default_universe must be in [1, %d], got %d", d.MaxUniverse, d.DefaultUniverse)
	}
	if d.Retention < 1 {
		return fmt.Errorf("draw.retention must be positive, got %d", d.Retention)
	}
	if d.PreviewIntervalMs < 0 || d.SettleDelayMs < 0 || d.ClearDelayMs < 0 {
		return errors.New("draw delays must not be negative")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port out of range: %d", s.Port)
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		return errors.New("cert_file and key_file must be set together")
	}
	return nil
}
