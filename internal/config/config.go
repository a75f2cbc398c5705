// Package config loads and persists the tool configuration as TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mvm/internal/fsutil"
)

// Version metadata, overridable via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const SchemaVersion = 1

type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	Downloads DownloadsConfig `toml:"downloads"`
	Logging   LoggingConfig   `toml:"logging"`
}

type StorageConfig struct {
	// Root is the install root holding versions/, bin/ and hook files.
	Root string `toml:"root"`
}

type DownloadsConfig struct {
	CommunityBase  string `toml:"community_base"`
	EnterpriseBase string `toml:"enterprise_base"`
	CatalogURL     string `toml:"catalog_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Storage: StorageConfig{Root: "~/.mvm"},
		Downloads: DownloadsConfig{
			CommunityBase:  "https://fastdl.mongodb.org",
			EnterpriseBase: "https://downloads.mongodb.com",
			CatalogURL:     "https://dl.mongodb.org/dl/src",
			TimeoutSeconds: 300,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mvm/config.toml"
	}
	return filepath.Join(home, ".mvm", "config.toml")
}

// Ensure loads the config at path, materializing the default document
// on first use.
func Ensure(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	cfg = DefaultConfig()
	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("CFG_PARSE: %w", err)
	}
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return err
	}
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("CFG_ENCODE: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fsutil.AtomicWrite(path, blob, 0o644)
}

// Normalize fills gaps with defaults so partial documents keep working.
func Normalize(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = def.Storage.Root
	}
	if cfg.Downloads.CommunityBase == "" {
		cfg.Downloads.CommunityBase = def.Downloads.CommunityBase
	}
	if cfg.Downloads.EnterpriseBase == "" {
		cfg.Downloads.EnterpriseBase = def.Downloads.EnterpriseBase
	}
	if cfg.Downloads.CatalogURL == "" {
		cfg.Downloads.CatalogURL = def.Downloads.CatalogURL
	}
	if cfg.Downloads.TimeoutSeconds <= 0 {
		cfg.Downloads.TimeoutSeconds = def.Downloads.TimeoutSeconds
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	return cfg
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("CFG_VERSION: unsupported config version %d", cfg.Version)
	}
	for name, base := range map[string]string{
		"community_base":  cfg.Downloads.CommunityBase,
		"enterprise_base": cfg.Downloads.EnterpriseBase,
		"catalog_url":     cfg.Downloads.CatalogURL,
	} {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("CFG_URL: %s must be an http(s) URL, got %q", name, base)
		}
	}
	return nil
}

// ResolveRoot expands the configured storage root to an absolute path.
func ResolveRoot(cfg Config) (string, error) {
	root := cfg.Storage.Root
	if env := os.Getenv("MVM_ROOT"); env != "" {
		root = env
	}
	expanded, err := ExpandPath(root)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}

func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}
