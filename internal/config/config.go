package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xxxsen/romdoctor/internal/constant"
)

const defaultConcurrency = 4

// Config describes the application level configuration loaded from json or toml.
type Config struct {
	BasePath        string    `json:"base_path" toml:"base_path"`
	GamelistFile    string    `json:"gamelist_file" toml:"gamelist_file"`
	RomExtensions   []string  `json:"rom_extensions" toml:"rom_extensions"`
	MediaExtensions []string  `json:"media_extensions" toml:"media_extensions"`
	Concurrency     int       `json:"concurrency" toml:"concurrency"`
	Log             LogConfig `json:"log" toml:"log"`
	S3              S3Config  `json:"s3" toml:"s3"`
}

// LogConfig overrides the logger set up at startup.
type LogConfig struct {
	File  string `json:"file" toml:"file"`
	Level string `json:"level" toml:"level"`
}

// S3Config holds the options for mirroring gamelist backups to an object store.
type S3Config struct {
	Host            string `json:"host" toml:"host"`
	Bucket          string `json:"bucket" toml:"bucket"`
	Region          string `json:"region" toml:"region"`
	AccessKeyID     string `json:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" toml:"secret_access_key"`
	SessionToken    string `json:"session_token" toml:"session_token"`
	ForcePathStyle  bool   `json:"force_path_style" toml:"force_path_style"`
	Prefix          string `json:"prefix" toml:"prefix"`
}

// Enabled reports whether enough is configured to reach a bucket.
func (c S3Config) Enabled() bool {
	return c.Host != "" && c.Bucket != ""
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		GamelistFile:    constant.DefaultGamelistFile,
		RomExtensions:   append([]string(nil), constant.DefaultRomExts...),
		MediaExtensions: append([]string(nil), constant.DefaultMediaExts...),
		Concurrency:     defaultConcurrency,
	}
}

// DefaultSearchPaths lists where Resolve looks when no path is given.
var DefaultSearchPaths = []string{
	"./romdoctor.json",
	"./romdoctor.toml",
	"/etc/romdoctor/config.json",
}

// Resolve loads an explicitly named config file and fails if it cannot be
// read. Without one it tries DefaultSearchPaths and falls back to Default
// when none of them exist.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	cfg, err := LoadFirst(DefaultSearchPaths...)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration. If none of the paths contain a
// readable config, an error wrapping os.ErrNotExist is returned.
func LoadFirst(paths ...string) (*Config, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("config not found in paths %v: %w", paths, os.ErrNotExist)
	}
	return nil, lastErr
}

// Load reads configuration from a single file; a .toml suffix selects the toml decoder.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.GamelistFile == "" {
		c.GamelistFile = constant.DefaultGamelistFile
	}
	if len(c.RomExtensions) == 0 {
		c.RomExtensions = append([]string(nil), constant.DefaultRomExts...)
	}
	if len(c.MediaExtensions) == 0 {
		c.MediaExtensions = append([]string(nil), constant.DefaultMediaExts...)
	}
	c.RomExtensions = normalizeExts(c.RomExtensions)
	c.MediaExtensions = normalizeExts(c.MediaExtensions)
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.GamelistFile, `/\`) {
		return errors.New("config.gamelist_file must be a plain file name")
	}
	for _, ext := range c.RomExtensions {
		for _, media := range c.MediaExtensions {
			if ext == media {
				return fmt.Errorf("extension %s is both a rom and a media extension", ext)
			}
		}
	}
	if (c.S3.Host == "") != (c.S3.Bucket == "") {
		return errors.New("config.s3.host and config.s3.bucket must be set together")
	}
	return nil
}
