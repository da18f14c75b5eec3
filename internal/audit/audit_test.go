package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecord_FormatsSortedDetails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := Open(Config{FilePath: path})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer l.Close()
	l.now = func() time.Time { return time.Date(2026, 3, 1, 22, 0, 0, 0, time.Local) }

	l.Record(ActionLock, map[string]any{"reason": "scheduled", "index": 2})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "2026-03-01 22:00:00 [LOCK] index=2 reason=\"scheduled\"\n"
	if string(data) != want {
		t.Fatalf("audit line = %q, want %q", data, want)
	}
}

func TestRecord_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := Open(Config{FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer l.Close()

	big := strings.Repeat("x", 1024)
	for i := 0; i < 1100; i++ {
		l.Record(ActionRotate, map[string]any{"pad": big})
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated file: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected at most 2 rotated files, stat .3 err = %v", err)
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Record(ActionUnlock, nil)
	if err := l.Close(); err != nil {
		t.Fatalf("Close() = %v, want nil", err)
	}
}
