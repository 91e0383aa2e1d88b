package caddyfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
)

// Loader reads a Caddyfile from disk and extracts its services.
type Loader struct {
	filePath string
}

// NewLoader creates a new Caddyfile loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.filePath
}

// Read returns the raw Caddyfile text.
func (l *Loader) Read() (string, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrSourceNotFound, l.filePath)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrReadFailure, err)
	}
	return string(data), nil
}

// Load reads and parses the Caddyfile.
func (l *Loader) Load() ([]domain.Service, error) {
	text, err := l.Read()
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}
