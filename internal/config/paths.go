package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const dirName = ".tavern"

// Dir returns ~/.tavern.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, dirName), nil
}

// resolvePath returns path, or ~/.tavern/config.yaml when path is empty.
// ErrConfigNotFound is returned when the file does not exist.
func resolvePath(path string) (string, error) {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, ErrConfigNotFound.WithDetails(path)
	}
	return path, err
}

func createPath(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}
