package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrJackie7/coderdev-hub/pkg/client"

	"gopkg.in/yaml.v3"
)

func resolveSessionPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".devhub", "session.yml"), nil
}

// loadSession reads the saved session. A missing file is an anonymous session.
func loadSession(path string) (client.Session, error) {
	var sess client.Session
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("failed to read session: %w", err)
	}
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return sess, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	return sess, nil
}

// saveSession writes sess to path, or removes the file for an anonymous session.
func saveSession(path string, sess client.Session) error {
	if !sess.Authenticated() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
