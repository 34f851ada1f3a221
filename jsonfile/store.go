// Package jsonfile persists the snipwatch configuration as a single JSON file.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/snipwatch"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// Compile-time interface verification.
var _ snipwatch.ConfigStore = (*Store)(nil)

// DefaultPath is the config file used when none is given.
const DefaultPath = "config.json"

// filePerms keeps credentials readable by the owner only.
const filePerms = 0o600

// Store reads and writes the configuration file at Path.
type Store struct {
	Path string
}

// NewStore creates a new Store for path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path}
}

// Load reads the configuration. Returns defaults if the file doesn't exist.
// Comments and trailing commas are accepted; unknown fields are ignored and
// missing fields keep their defaults.
func (s *Store) Load() (*snipwatch.Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snipwatch.DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := snipwatch.DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %w", s.Path, err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if cfg.Snippets == nil {
		cfg.Snippets = []snipwatch.Snippet{}
	}
	return cfg, nil
}

// Save writes the configuration atomically, creating parent directories if needed.
func (s *Store) Save(cfg *snipwatch.Config) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(s.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(s.Path, filePerms); err != nil {
		return fmt.Errorf("chmod %s: %w", s.Path, err)
	}
	return nil
}
