// Package storage persists the login session and optional credentials
// between CLI invocations as JSON snapshots under the dotfile directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pryvon/tempmail-cli/internal/mailtm"
)

const SessionFile = "session.json"

// New creates a storage rooted at baseDir, creating it if needed. The
// credentials file may live outside baseDir, so its path is configured
// separately.
func New(baseDir, credentialsPath string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if credentialsPath == "" {
		credentialsPath = filepath.Join(baseDir, "credentials.json")
	}

	return &Storage{
		basePath:        baseDir,
		credentialsPath: credentialsPath,
	}, nil
}

// SaveSession writes the session snapshot.
func (s *Storage) SaveSession(token string, account *mailtm.Account) error {
	stored := &StoredSession{
		Token:     token,
		Account:   account,
		LastLogin: time.Now().Unix(),
	}

	jsonData, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	sessionPath := filepath.Join(s.basePath, SessionFile)
	if err := os.WriteFile(sessionPath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// LoadSession reads the session snapshot. Returns (nil, nil) when no
// session is stored.
func (s *Storage) LoadSession() (*StoredSession, error) {
	sessionPath := filepath.Join(s.basePath, SessionFile)

	jsonData, err := os.ReadFile(sessionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var stored StoredSession
	if err := json.Unmarshal(jsonData, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if stored.Token == "" || stored.Account == nil {
		return nil, nil
	}

	return &stored, nil
}

// HasSession reports whether a session snapshot exists.
func (s *Storage) HasSession() bool {
	_, err := os.Stat(filepath.Join(s.basePath, SessionFile))
	return err == nil
}

// DeleteSession removes the session snapshot. Not an error if absent.
func (s *Storage) DeleteSession() error {
	err := os.Remove(filepath.Join(s.basePath, SessionFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SaveCredentials writes the credentials snapshot.
func (s *Storage) SaveCredentials(address, password string) error {
	creds := &StoredCredentials{
		Address:  address,
		Password: password,
	}

	jsonData, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.credentialsPath), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if err := os.WriteFile(s.credentialsPath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// LoadCredentials reads saved credentials. Returns (nil, nil) when none are
// stored.
func (s *Storage) LoadCredentials() (*StoredCredentials, error) {
	jsonData, err := os.ReadFile(s.credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds StoredCredentials
	if err := json.Unmarshal(jsonData, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// HasCredentials reports whether saved credentials exist.
func (s *Storage) HasCredentials() bool {
	_, err := os.Stat(s.credentialsPath)
	return err == nil
}

// DeleteCredentials removes saved credentials. Not an error if absent.
func (s *Storage) DeleteCredentials() error {
	err := os.Remove(s.credentialsPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// BasePath returns the storage directory.
func (s *Storage) BasePath() string {
	return s.basePath
}
