package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/bastion/internal/models"
)

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.APIURL != "" || cfg.ActiveOrg != "" {
			t.Errorf("expected empty config, got %+v", cfg)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		expected := &models.Config{
			APIURL:       "https://api.example.com",
			ActiveOrg:    "acme",
			PollInterval: models.Duration(5 * time.Second),
		}
		if err := Save(dir, expected); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if *cfg != *expected {
			t.Errorf("got %+v, want %+v", cfg, expected)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, configFile), []byte("{not json"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Error("expected error for invalid json")
		}
	})
}

func TestActiveOrg(t *testing.T) {
	dir := t.TempDir()

	if err := SetActiveOrg(dir, "acme"); err != nil {
		t.Fatalf("SetActiveOrg: %v", err)
	}
	got, err := GetActiveOrg(dir)
	if err != nil || got != "acme" {
		t.Fatalf("GetActiveOrg = %q, %v", got, err)
	}

	if err := ClearActiveOrg(dir); err != nil {
		t.Fatalf("ClearActiveOrg: %v", err)
	}
	got, _ = GetActiveOrg(dir)
	if got != "" {
		t.Errorf("after clear got %q", got)
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()

	s, err := Resolve(dir, Env{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.APIURL != DefaultAPIURL || s.PollInterval != DefaultPollInterval || s.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("defaults not applied: %+v", s)
	}

	if err := Save(dir, &models.Config{APIURL: "https://file.example.com/", PollInterval: models.Duration(time.Second)}); err != nil {
		t.Fatal(err)
	}
	s, _ = Resolve(dir, Env{})
	if s.APIURL != "https://file.example.com" {
		t.Errorf("file APIURL not applied (or not trimmed): %q", s.APIURL)
	}
	if s.PollInterval != time.Second {
		t.Errorf("file PollInterval = %v", s.PollInterval)
	}

	s, _ = Resolve(dir, Env{APIURL: "https://env.example.com", PollInterval: 7 * time.Second, Token: "tok", LogLevel: "debug"})
	if s.APIURL != "https://env.example.com" {
		t.Errorf("env APIURL = %q", s.APIURL)
	}
	if s.PollInterval != 7*time.Second {
		t.Errorf("env PollInterval = %v", s.PollInterval)
	}
	if s.Token != "tok" {
		t.Errorf("Token = %q", s.Token)
	}
	if s.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", s.LogLevel)
	}
}

func TestResolveInvalidLevel(t *testing.T) {
	if _, err := Resolve(t.TempDir(), Env{LogLevel: "chatty"}); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("BASTION_API_URL=https://dotenv.example.com\nBASTION_POLL_INTERVAL=4s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BASTION_API_URL", "")
	os.Unsetenv("BASTION_API_URL")
	t.Setenv("BASTION_POLL_INTERVAL", "")
	os.Unsetenv("BASTION_POLL_INTERVAL")

	e, err := LoadEnv(envFile, filepath.Join(dir, ".env.missing"))
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.APIURL != "https://dotenv.example.com" {
		t.Errorf("APIURL = %q", e.APIURL)
	}
	if e.PollInterval != 4*time.Second {
		t.Errorf("PollInterval = %v", e.PollInterval)
	}
	if e.LogLevel != "info" {
		t.Errorf("LogLevel default = %q", e.LogLevel)
	}
}

func TestDirHonorsEnv(t *testing.T) {
	t.Setenv("BASTION_HOME", "/tmp/bastion-test")
	got, err := Dir()
	if err != nil || got != "/tmp/bastion-test" {
		t.Errorf("Dir() = %q, %v", got, err)
	}
}
