// Package flags implements consume-once trigger files written by other
// processes (display wake hooks, boot units).
package flags

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// File is a trigger flag at a fixed path.
type File struct {
	Path string
}

// Consume reports whether the flag was present and removes it. A missing
// path or empty File is never an error.
func (f File) Consume() (bool, error) {
	if f.Path == "" {
		return false, nil
	}
	if _, err := os.Stat(f.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat flag %s: %w", f.Path, err)
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Still report the trigger; a flag we cannot delete fires again next time.
		return true, fmt.Errorf("failed to remove flag %s: %w", f.Path, err)
	}
	return true, nil
}

// Raise creates the flag.
func (f File) Raise() error {
	if err := os.WriteFile(f.Path, nil, 0600); err != nil {
		return fmt.Errorf("failed to write flag %s: %w", f.Path, err)
	}
	return nil
}
