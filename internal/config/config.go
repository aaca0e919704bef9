// Package config resolves board settings from defaults, an optional YAML
// or TOML file, an optional .env file and SMAIDRM_* environment variables,
// later sources winning.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/smaidrm/internal/document"
)

const (
	EnvDB               = "SMAIDRM_DB"
	EnvLogLevel         = "SMAIDRM_LOG_LEVEL"
	EnvReminderInterval = "SMAIDRM_REMINDER_INTERVAL"
	EnvKepsekPassword   = "SMAIDRM_KEPSEK_PASSWORD"
	EnvAdminPassword    = "SMAIDRM_ADMIN_PASSWORD"
	EnvWhatsApp         = "SMAIDRM_WHATSAPP"
)

// DefaultDotEnv is read from the working directory when present.
const DefaultDotEnv = ".env"

// Config is the resolved configuration.
type Config struct {
	DBPath           string
	LogLevel         string
	ReminderInterval time.Duration
	KepsekPassword   string
	AdminPassword    string
	WhatsAppNumber   string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:           "smaidrm.db",
		LogLevel:         "info",
		ReminderInterval: 30 * time.Second,
		KepsekPassword:   "Drm84",
		AdminPassword:    "Darul84",
		WhatsAppNumber:   document.DefaultWhatsAppNumber,
	}
}

// fileConfig is the on-disk shape. Pointers distinguish "unset" from
// "set to empty".
type fileConfig struct {
	DBPath           *string `yaml:"db" toml:"db"`
	LogLevel         *string `yaml:"log_level" toml:"log_level"`
	ReminderInterval *string `yaml:"reminder_interval" toml:"reminder_interval"`
	Credentials      struct {
		Kepsek *string `yaml:"kepsek" toml:"kepsek"`
		Admin  *string `yaml:"admin" toml:"admin"`
	} `yaml:"credentials" toml:"credentials"`
	WhatsAppNumber *string `yaml:"whatsapp" toml:"whatsapp"`
}

// Loader reads configuration. Zero fields are skipped: no Path means no
// file, no DotEnv means no .env, nil LookupEnv means no environment.
type Loader struct {
	Path      string
	DotEnv    string
	LookupEnv func(string) (string, bool)
}

// Load resolves configuration from path (may be empty), ./.env and the
// process environment.
func Load(path string) (Config, error) {
	return Loader{Path: path, DotEnv: DefaultDotEnv, LookupEnv: os.LookupEnv}.Load()
}

// Load resolves configuration.
func (l Loader) Load() (Config, error) {
	cfg := Default()

	if l.Path != "" {
		if err := applyFile(&cfg, l.Path); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if l.DotEnv != "" {
		m, err := godotenv.Read(l.DotEnv)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("load %s: %w", l.DotEnv, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if l.LookupEnv != nil {
			if v, ok := l.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return fmt.Errorf("load config: unsupported file type %q (want .yaml, .yml or .toml)", ext)
	}

	if raw.DBPath != nil {
		cfg.DBPath = strings.TrimSpace(*raw.DBPath)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*raw.LogLevel)
	}
	if raw.ReminderInterval != nil {
		d, err := parseInterval(*raw.ReminderInterval)
		if err != nil {
			return fmt.Errorf("parse reminder_interval: %w", err)
		}
		cfg.ReminderInterval = d
	}
	if raw.Credentials.Kepsek != nil {
		cfg.KepsekPassword = *raw.Credentials.Kepsek
	}
	if raw.Credentials.Admin != nil {
		cfg.AdminPassword = *raw.Credentials.Admin
	}
	if raw.WhatsAppNumber != nil {
		cfg.WhatsAppNumber = strings.TrimSpace(*raw.WhatsAppNumber)
	}
	return cfg.validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDB); ok && strings.TrimSpace(v) != "" {
		cfg.DBPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvReminderInterval); ok && strings.TrimSpace(v) != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvReminderInterval, err)
		}
		cfg.ReminderInterval = d
	}
	if v, ok := lookup(EnvKepsekPassword); ok && v != "" {
		cfg.KepsekPassword = v
	}
	if v, ok := lookup(EnvAdminPassword); ok && v != "" {
		cfg.AdminPassword = v
	}
	if v, ok := lookup(EnvWhatsApp); ok && strings.TrimSpace(v) != "" {
		cfg.WhatsAppNumber = strings.TrimSpace(v)
	}
	return cfg.validate()
}

func parseInterval(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

func (c Config) validate() error {
	if c.DBPath == "" {
		return errors.New("config: db path is empty")
	}
	if c.KepsekPassword == "" || c.AdminPassword == "" {
		return errors.New("config: credentials must not be empty")
	}
	return nil
}
