package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGetOrCreateReusesSession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	s1, err := GetOrCreate(dir)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !strings.HasPrefix(s1.ID, sessionPrefix) {
		t.Fatalf("expected %s prefix, got %q", sessionPrefix, s1.ID)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(s1.ID, sessionPrefix)); err != nil {
		t.Errorf("session ID %q is not a UUID: %v", s1.ID, err)
	}

	s2, err := GetOrCreate(dir)
	if err != nil {
		t.Fatalf("GetOrCreate (second): %v", err)
	}
	if s1.ID != s2.ID {
		t.Fatalf("expected same session ID, got %q vs %q", s1.ID, s2.ID)
	}
}

func TestGetMissing(t *testing.T) {
	if _, err := Get(t.TempDir()); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadToken(dir); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	if err := SaveToken(dir, "  secret-token\n"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, tokenFile))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token perms = %o, want 600", perm)
	}

	got, err := LoadToken(dir)
	if err != nil || got != "secret-token" {
		t.Fatalf("LoadToken = %q, %v", got, err)
	}

	if err := ClearToken(dir); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if err := ClearToken(dir); err != nil {
		t.Fatalf("ClearToken twice: %v", err)
	}
	if _, err := LoadToken(dir); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}
}

func TestSaveTokenRejectsEmpty(t *testing.T) {
	if err := SaveToken(t.TempDir(), "   "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestTokenStoreOverride(t *testing.T) {
	dir := t.TempDir()
	if err := SaveToken(dir, "from-file"); err != nil {
		t.Fatal(err)
	}

	tok, _ := TokenStore{Dir: dir, Override: "from-env"}.Token()
	if tok != "from-env" {
		t.Errorf("override ignored: %q", tok)
	}
	tok, _ = TokenStore{Dir: dir}.Token()
	if tok != "from-file" {
		t.Errorf("file token = %q", tok)
	}
}
