package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/marcus/bastion/internal/models"
)

const (
	configFile = "config.json"
	homeDir    = ".bastion"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultPollInterval   = 3 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Dir returns the console state directory: $BASTION_HOME, else ~/.bastion.
func Dir() (string, error) {
	if v := os.Getenv("BASTION_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, homeDir), nil
}

// Load reads the config from disk
func Load(dir string) (*models.Config, error) {
	configPath := filepath.Join(dir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(dir string, cfg *models.Config) error {
	configPath := filepath.Join(dir, configFile)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// SetActiveOrg records the organization the console acts on
func SetActiveOrg(dir string, clientName string) error {
	cfg, err := Load(dir)
	if err != nil {
		return err
	}

	cfg.ActiveOrg = clientName
	return Save(dir, cfg)
}

// GetActiveOrg returns the active organization's client name
func GetActiveOrg(dir string) (string, error) {
	cfg, err := Load(dir)
	if err != nil {
		return "", err
	}
	return cfg.ActiveOrg, nil
}

// ClearActiveOrg clears the active organization
func ClearActiveOrg(dir string) error {
	return SetActiveOrg(dir, "")
}

// MarkWelcomeSeen records that the welcome modal was dismissed
func MarkWelcomeSeen(dir string) error {
	cfg, err := Load(dir)
	if err != nil {
		return err
	}
	cfg.SeenWelcome = true
	return Save(dir, cfg)
}

// Env holds the environment overrides.
type Env struct {
	APIURL         string        `env:"BASTION_API_URL"`
	Token          string        `env:"BASTION_TOKEN"`
	LogLevel       string        `env:"BASTION_LOG_LEVEL" envDefault:"info"`
	PollInterval   time.Duration `env:"BASTION_POLL_INTERVAL"`
	RequestTimeout time.Duration `env:"BASTION_REQUEST_TIMEOUT"`
}

// LoadEnv loads the given .env files that exist, then parses the environment.
func LoadEnv(envFiles ...string) (Env, error) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Env{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// Settings is the effective configuration after merging defaults, the
// config file and the environment. Flags are applied on top by the caller.
type Settings struct {
	Dir            string
	APIURL         string
	Token          string
	ActiveOrg      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       slog.Level
	SeenWelcome    bool
}

// Resolve merges defaults < config file < environment.
func Resolve(dir string, e Env) (*Settings, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Dir:            dir,
		APIURL:         DefaultAPIURL,
		ActiveOrg:      cfg.ActiveOrg,
		PollInterval:   DefaultPollInterval,
		RequestTimeout: DefaultRequestTimeout,
		SeenWelcome:    cfg.SeenWelcome,
	}
	if cfg.APIURL != "" {
		s.APIURL = cfg.APIURL
	}
	if cfg.PollInterval > 0 {
		s.PollInterval = time.Duration(cfg.PollInterval)
	}
	if cfg.RequestTimeout > 0 {
		s.RequestTimeout = time.Duration(cfg.RequestTimeout)
	}

	if e.APIURL != "" {
		s.APIURL = e.APIURL
	}
	if e.PollInterval > 0 {
		s.PollInterval = e.PollInterval
	}
	if e.RequestTimeout > 0 {
		s.RequestTimeout = e.RequestTimeout
	}
	s.Token = e.Token

	level, err := ParseLevel(e.LogLevel)
	if err != nil {
		return nil, err
	}
	s.LogLevel = level
	s.APIURL = strings.TrimRight(s.APIURL, "/")

	return s, nil
}

// ParseLevel parses a log level name. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
