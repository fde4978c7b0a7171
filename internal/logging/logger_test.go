package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/highcut/internal/logging"
)

func TestConsoleLineShape(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.Component(logger, "cutter").Info("clip written", "index", 2, "file", "a b.mp4")
	line := buf.String()
	for _, want := range []string{" INFO cutter: clip written", "index=2", `file="a b.mp4"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be hoisted: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller at info level: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestJSONFormatWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := logging.WithStage(logging.WithJobID(context.Background(), "abc123"), "detecting")
	logging.WithContext(ctx, logger).Info("model ready")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["job_id"] != "abc123" || rec["stage"] != "detecting" || rec["level"] != "info" || rec["msg"] != "model ready" {
		t.Fatalf("unexpected record %v", rec)
	}
	if _, ok := rec["ts"]; !ok {
		t.Fatalf("expected ts key: %v", rec)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "highcut.log")
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{File: path, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Error("boom")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "ERROR boom") {
		t.Fatalf("unexpected file content %q", b)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseLevel(t *testing.T) {
	if logging.ParseLevel("DEBUG") != slog.LevelDebug || logging.ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("unexpected level mapping")
	}
	logging.NewNop().Error("discarded")
}

func TestConsoleDebugAddsCaller(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("probing duration")
	if line := buf.String(); !strings.Contains(line, "[logger_test.go:") {
		t.Fatalf("expected caller frame at debug level: %q", line)
	}
}
