package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadResult carries the effective config plus where it came from.
type LoadResult struct {
	Config   *Config
	Path     string
	Found    bool
	Warnings []string // keys the kiosk does not read
}

// DefaultConfigPath returns the document location. Priority:
// 1) $KIOSK_CONFIG
// 2) $XDG_CONFIG_HOME/kiosk/config.json
// 3) ~/.config/kiosk/config.json
func DefaultConfigPath() (string, error) {
	if path := os.Getenv("KIOSK_CONFIG"); path != "" {
		return path, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kiosk", "config.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "kiosk", "config.json"), nil
}

// Load reads the document from the standard location.
func Load() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath decodes the document at path over DefaultConfig. A missing
// file yields the defaults with zero tabs and no error.
func LoadFromPath(path string) (*LoadResult, error) {
	cfg := DefaultConfig()
	res := &LoadResult{Config: cfg, Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	res.Found = true

	if err := decodeYAML(data, cfg, false); err != nil {
		// Tab-indented JSON is valid JSON but not valid YAML.
		if !json.Valid(data) {
			res.Config = DefaultConfig()
			return res, fmt.Errorf("%s: %w", path, err)
		}
		cfg = DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			res.Config = DefaultConfig()
			return res, fmt.Errorf("%s: failed to parse config: %w", path, err)
		}
		res.Config = cfg
		return res, nil
	}

	// The installer writes keys for addons the kiosk never reads; report them
	// instead of failing.
	var typeErr *yaml.TypeError
	if err := decodeYAML(data, DefaultConfig(), true); errors.As(err, &typeErr) {
		res.Warnings = append(res.Warnings, typeErr.Errors...)
	}
	return res, nil
}

func decodeYAML(data []byte, out *Config, strict bool) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(strict)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}
