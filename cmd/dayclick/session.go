package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// loadSession returns the session stored at path, or "" when there is none
// yet or the file holds something that is not a session id.
func loadSession(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	session := strings.TrimSpace(string(contents))
	if uuid.Validate(session) != nil {
		return "", nil
	}

	return session, nil
}

func saveSession(path string, session string) error {
	if session == "" {
		return nil
	}

	//nolint:mnd //owner only
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	//nolint:mnd //owner only
	return os.WriteFile(path, []byte(session+"\n"), 0o600)
}
