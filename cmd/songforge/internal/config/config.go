// Package config loads the songforge configuration file.
//
// The file lives under os.UserConfigDir()/songforge/config.yaml, or under
// $SONGFORGE_CONFIG_DIR when set:
//
//	server:
//	  addr: ":8080"
//	  background_covers: true
//	  allow_origin: https://songs.example.com
//	store:
//	  backend: badger        # memory | badger | sqlite
//	  path: /var/lib/songforge/cache
//	audio:
//	  codec: wav             # wav | mp3
//	  sample_rate: 44100
//	  bitrate: 128
//	  workers: 4
//	cover:
//	  provider: openai       # none | openai | gemini
//	  model: dall-e-3
//	export:
//	  dest: s3://songs/exports
//	  s3:
//	    region: eu-central-1
//
// Secrets may also come from the environment, which wins over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/songforge/pkg/audio/pcm"
	"github.com/haivivi/songforge/pkg/cover"
	"github.com/haivivi/songforge/pkg/render"
	"github.com/haivivi/songforge/pkg/storage"
	"github.com/haivivi/songforge/pkg/store"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "songforge"

	// fileName is the configuration file inside the directory.
	fileName = "config.yaml"

	// DirEnv overrides the configuration directory.
	DirEnv = "SONGFORGE_CONFIG_DIR"
)

// Config is the full configuration.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Audio  AudioConfig  `yaml:"audio" json:"audio"`
	Cover  CoverConfig  `yaml:"cover" json:"cover"`
	Export ExportConfig `yaml:"export" json:"export"`

	// Dir is the directory the file was loaded from.
	Dir string `yaml:"-" json:"-"`
}

type ServerConfig struct {
	Addr             string `yaml:"addr" json:"addr"`
	BackgroundCovers bool   `yaml:"background_covers" json:"background_covers"`
	MaxCount         int    `yaml:"max_count,omitempty" json:"max_count,omitempty"`
	AllowOrigin      string `yaml:"allow_origin,omitempty" json:"allow_origin,omitempty"`
}

type StoreConfig struct {
	Backend store.Backend `yaml:"backend" json:"backend"`
	Path    string        `yaml:"path,omitempty" json:"path,omitempty"`
}

type AudioConfig struct {
	Codec      render.Codec `yaml:"codec" json:"codec"`
	SampleRate int          `yaml:"sample_rate" json:"sample_rate"`
	Bitrate    int          `yaml:"bitrate" json:"bitrate"`
	Workers    int          `yaml:"workers" json:"workers"`
}

type CoverConfig struct {
	Provider cover.ProviderName `yaml:"provider" json:"provider"`
	Model    string             `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey   string             `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL  string             `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Workers  int                `yaml:"workers" json:"workers"`
	Timeout  time.Duration      `yaml:"timeout" json:"timeout"`
}

type ExportConfig struct {
	Dest string            `yaml:"dest" json:"dest"`
	S3   storage.S3Options `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", BackgroundCovers: true},
		Store:  StoreConfig{Backend: store.BackendMemory},
		Audio: AudioConfig{
			Codec:      render.WAV,
			SampleRate: 44100,
			Bitrate:    128,
		},
		Cover: CoverConfig{
			Provider: cover.ProviderNone,
			Workers:  2,
			Timeout:  time.Minute,
		},
		Export: ExportConfig{Dest: "."},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if d := os.Getenv(DirEnv); d != "" {
		return d, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom loads dir/config.yaml over the defaults. A missing file is not an
// error.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()
	cfg.Dir = dir
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", fileName, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, fileName)
}

// Save writes the configuration file, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(c.Path(), data, 0o600)
}

// applyEnv overrides secrets from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("SONGFORGE_COVER_API_KEY"); v != "" {
		c.Cover.APIKey = v
	} else if c.Cover.APIKey == "" {
		switch c.Cover.Provider {
		case cover.ProviderOpenAI:
			c.Cover.APIKey = os.Getenv("OPENAI_API_KEY")
		case cover.ProviderGemini:
			c.Cover.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.Export.S3.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.Export.S3.SecretKey = v
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case store.BackendMemory, store.BackendBadger, store.BackendSQLite:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	codec, err := render.ParseCodec(string(c.Audio.Codec))
	if err != nil {
		return fmt.Errorf("audio.codec: %w", err)
	}
	c.Audio.Codec = codec
	if _, err := pcm.ForRate(c.Audio.SampleRate); err != nil {
		return fmt.Errorf("audio.sample_rate: %w", err)
	}
	switch c.Cover.Provider {
	case cover.ProviderNone, cover.ProviderOpenAI, cover.ProviderGemini:
	default:
		return fmt.Errorf("cover.provider: unknown provider %q", c.Cover.Provider)
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Cover.APIKey = mask(cp.Cover.APIKey)
	cp.Export.S3.AccessKey = mask(cp.Export.S3.AccessKey)
	cp.Export.S3.SecretKey = mask(cp.Export.S3.SecretKey)
	return &cp
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
