package output_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podscribe/internal/output"
	"podscribe/internal/transcript"
)

func TestWriteArtifacts(t *testing.T) {
	root := t.TempDir()
	w := output.NewWriter(root)

	published := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	meta := transcript.Metadata{
		Title:     `Test: Episode "01" <Special>`,
		Channel:   "daily-tech",
		Published: &published,
		Duration:  "2730",
		Language:  "en-US",
	}
	segments := []transcript.Segment{
		{Start: 0, End: 1.5, Text: "Hello.", Speaker: 1},
	}

	mdPath, err := w.Write(meta, segments)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	wantDir := filepath.Join(root, "daily-tech", "2025-03-14")
	if filepath.Dir(mdPath) != wantDir {
		t.Errorf("markdown dir = %q, want %q", filepath.Dir(mdPath), wantDir)
	}
	if got := filepath.Base(mdPath); got != "Test Episode 01 Special.md" {
		t.Errorf("markdown file = %q, want sanitized title", got)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "**Duration**: 45:30") {
		t.Errorf("expected formatted duration in markdown:\n%s", md)
	}
	if !strings.Contains(string(md), "[00:00:00] **Speaker 1**: Hello.") {
		t.Errorf("expected segment line in markdown:\n%s", md)
	}

	jsonPath := strings.TrimSuffix(mdPath, ".md") + ".json"
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json sidecar: %v", err)
	}
	var doc transcript.JSONDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal sidecar: %v", err)
	}
	if len(doc.Segments) != 1 || doc.Segments[0].Text != "Hello." {
		t.Errorf("sidecar segments = %+v", doc.Segments)
	}
}

func TestWriteWithoutPublishedDate(t *testing.T) {
	root := t.TempDir()
	w := output.NewWriter(root)

	mdPath, err := w.Write(transcript.Metadata{Title: "Undated", Channel: "misc"}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	if !strings.Contains(mdPath, filepath.Join("misc", today)) {
		t.Errorf("expected today's date in path, got %q", mdPath)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3600", "01:00:00"},
		{"2730", "45:30"},
		{"59", "00:59"},
		{"0", "00:00"},
		{"45:30", "45:30"},
		{"1:02:03", "1:02:03"},
		{"", ""},
		{"abc", "abc"},
	}
	for _, tc := range cases {
		if got := output.FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
