package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gitlab.com/boxker/boxk"
)

func TestBuild(t *testing.T) {
	dir, err := os.MkdirTemp("", "boxkerlog")
	if err != nil {
		t.Fatalf("error creating temp dir: %s\n", err)
	}
	defer os.RemoveAll(dir)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	path := filepath.Join(dir, "logs", "boxker.log")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("error creating log dir: %s\n", err)
	}
	if err := os.WriteFile(path, []byte("{\"level\":\"info\",\"message\":\"previous\"}\n"), 0644); err != nil {
		t.Fatalf("error seeding log: %s\n", err)
	}

	console := &bytes.Buffer{}
	logger, f, err := build(&boxk.LogConfig{Level: "debug", File: path, Console: true}, console)
	if err != nil {
		t.Fatalf("error building logger: %s\n", err)
	}
	logger.Debug().Str("step", "click").Msg("clicked")
	logger.Error().Msg("failed")
	f.Close()

	if !strings.Contains(console.String(), "clicked") || !strings.Contains(console.String(), "step=") {
		t.Fatalf("expected console output got %q\n", console.String())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("error reading log: %s\n", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected file to be appended to, got %d lines\n%s\n", len(lines), raw)
	}
	entry := make(map[string]interface{})
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("log line was not json: %s\n", err)
	}
	if entry["level"] != "debug" || entry["step"] != "click" || entry["time"] == nil {
		t.Fatalf("unexpected entry %v\n", entry)
	}
}

func TestBuildLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	console := &bytes.Buffer{}
	logger, f, err := build(&boxk.LogConfig{Level: "warn"}, console)
	if err != nil {
		t.Fatalf("error building logger: %s\n", err)
	}
	if f != nil {
		t.Fatalf("expected no file without a path")
	}
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if strings.Contains(console.String(), "hidden") || !strings.Contains(console.String(), "shown") {
		t.Fatalf("level not applied: %q\n", console.String())
	}

	if _, _, err := build(&boxk.LogConfig{File: filepath.Join(os.DevNull, "x", "boxker.log")}, console); err == nil {
		t.Fatalf("expected error for unwritable log path")
	}
}
