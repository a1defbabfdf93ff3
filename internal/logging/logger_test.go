package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	logger := slog.New(newConsoleHandler(&buf, levelVar))
	logger = NewComponentLogger(logger, "submitter")
	logger.Info("job created", String(FieldChannel, "nopriors"), Int("count", 3))

	line := buf.String()
	if !strings.Contains(line, " INFO submitter: job created") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "channel=nopriors") || !strings.Contains(line, "count=3") {
		t.Fatalf("missing attrs in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	logger := slog.New(newConsoleHandler(&buf, levelVar))
	logger.Info("submitted", String("title", "Episode One"))

	if !strings.Contains(buf.String(), `title="Episode One"`) {
		t.Fatalf("expected quoted title, got %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)

	logger := slog.New(newConsoleHandler(&buf, levelVar))
	logger.Info("suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info line should have been suppressed: %q", out)
	}
	if !strings.Contains(out, "WARN kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should never be enabled")
	}
}
