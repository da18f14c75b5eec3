package main

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/kiosk/internal/config"
)

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"30", 30, false},
		{"0", 0, false},
		{"90m", 90, false},
		{"2h", 120, false},
		{"1h30m", 90, false},
		{"-5", 0, true},
		{"90s", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMinutes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseMinutes(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("parseMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRedact(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LockoutPassword = "hunter2"
	cfg.HiddenTabPin = config.HiddenPinDisabled
	cfg.Tabs = []config.Tab{
		{URL: "https://a.example", Username: "u", Password: "p"},
		{URL: "https://b.example"},
	}

	got := redact(cfg)
	if got.LockoutPassword != redacted {
		t.Fatalf("LockoutPassword = %q, want redacted", got.LockoutPassword)
	}
	if got.HiddenTabPin != config.HiddenPinDisabled {
		t.Fatalf("HiddenTabPin = %q, want the disabled sentinel kept", got.HiddenTabPin)
	}
	if got.Tabs[0].Password != redacted || got.Tabs[1].Password != "" {
		t.Fatalf("tab passwords = %q %q", got.Tabs[0].Password, got.Tabs[1].Password)
	}
	if cfg.LockoutPassword != "hunter2" || cfg.Tabs[0].Password != "p" {
		t.Fatal("redact() modified its input")
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"secret\n", "secret", false},
		{"secret\r\nmore\n", "secret", false},
		{"no newline", "no newline", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := readLine(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Fatalf("readLine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("readLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadDaemonConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg := loadDaemonConfig(t.TempDir()+"/absent.json", config.Env{LogLevel: "debug"})
	if len(cfg.Tabs) != 0 {
		t.Fatalf("Tabs = %v, want none", cfg.Tabs)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want env override", cfg.Logging.Level)
	}
}
