// Package session stores the console's credentials and identity on disk:
// the bearer token used for every API call and the console session ID
// stamped on local activity records.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	sessionFile   = "session"
	tokenFile     = "token"
	sessionPrefix = "ses_"
)

// ErrNoToken is returned when no bearer token is stored or configured.
var ErrNoToken = errors.New("not logged in: run 'bastion login' or set BASTION_TOKEN")

// Session identifies one console installation across runs
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// generateID creates a new random session ID
func generateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return sessionPrefix + id.String(), nil
}

// GetOrCreate returns the current session, creating one if necessary
func GetOrCreate(dir string) (*Session, error) {
	if sess, err := Get(dir); err == nil {
		return sess, nil
	}

	id, err := generateID()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        id,
		StartedAt: time.Now(),
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	if err := Save(dir, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Save writes the session to disk
func Save(dir string, sess *Session) error {
	sessionPath := filepath.Join(dir, sessionFile)

	content := fmt.Sprintf("%s\n%s\n%s\n", sess.ID, sess.StartedAt.Format(time.RFC3339), sess.Name)
	if err := os.WriteFile(sessionPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

// Get returns the current session without creating one
func Get(dir string) (*Session, error) {
	sessionPath := filepath.Join(dir, sessionFile)

	data, err := os.ReadFile(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("invalid session file")
	}

	sess := &Session{
		ID: strings.TrimSpace(lines[0]),
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[1])); err == nil {
		sess.StartedAt = t
	}
	if len(lines) >= 3 {
		sess.Name = strings.TrimSpace(lines[2])
	}

	return sess, nil
}

// SaveToken stores the bearer token, readable only by the owner
func SaveToken(dir, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, tokenFile), []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// LoadToken reads the stored bearer token
func LoadToken(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// ClearToken removes the stored token. Removing a missing token is not an error.
func ClearToken(dir string) error {
	err := os.Remove(filepath.Join(dir, tokenFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// TokenStore reads the token from an override (BASTION_TOKEN or a flag)
// or the token file. It satisfies api.TokenSource.
type TokenStore struct {
	Dir      string
	Override string
}

// Token returns the bearer token to send.
func (s TokenStore) Token() (string, error) {
	if s.Override != "" {
		return s.Override, nil
	}
	return LoadToken(s.Dir)
}
