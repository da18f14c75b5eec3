// Package audit writes security and navigation events to a size-rotated
// file, separate from the daemon's stderr log.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Action names one audited event.
type Action string

const (
	ActionLock         Action = "LOCK"
	ActionUnlock       Action = "UNLOCK"
	ActionUnlockFailed Action = "UNLOCK-FAILED"
	ActionRotate       Action = "ROTATE"
	ActionNavigate     Action = "NAVIGATE"
	ActionHome         Action = "HOME"
	ActionHiddenEnter  Action = "HIDDEN-ENTER"
	ActionHiddenExit   Action = "HIDDEN-EXIT"
	ActionPinFailed    Action = "PIN-FAILED"
	ActionPause        Action = "PAUSE"
)

// Config holds audit file settings.
type Config struct {
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// DefaultPath returns ~/.local/share/kiosk/audit.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "kiosk", "audit.log")
}

// Logger appends audit lines and rotates the file once it reaches
// MaxSizeMB, keeping MaxFiles rotated copies.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
	now         func() time.Time
}

// Open creates the audit file (and its directory) if needed.
func Open(cfg Config) (*Logger, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultPath()
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 3
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory %s: %w", dir, err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file %s: %w", cfg.FilePath, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat audit file: %w", err)
	}

	return &Logger{
		file:        f,
		config:      cfg,
		currentSize: stat.Size(),
		now:         time.Now,
	}, nil
}

// Record writes one line: timestamp, action, then details sorted by key.
// A nil Logger discards everything.
func (l *Logger) Record(action Action, details map[string]any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	if l.currentSize >= int64(l.config.MaxSizeMB)*1024*1024 {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "audit rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := details[k].(string); ok {
			fmt.Fprintf(&sb, " %s=%q", k, s)
		} else {
			fmt.Fprintf(&sb, " %s=%v", k, details[k])
		}
	}
	sb.WriteString("\n")

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write audit entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Close releases the file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts audit.log.N to audit.log.N+1, dropping the oldest, then
// reopens an empty audit.log.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.config.FilePath
	os.Remove(fmt.Sprintf("%s.%d", base, l.config.MaxFiles))
	for i := l.config.MaxFiles - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", base, i), fmt.Sprintf("%s.%d", base, i+1))
	}
	if err := os.Rename(base, base+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate audit file: %w", err)
	}

	f, err := os.OpenFile(base, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new audit file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}
