package transcript_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"podscribe/internal/transcript"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{2.4, "00:00:02"},
		{59.9, "00:00:59"},
		{61, "00:01:01"},
		{3599, "00:59:59"},
		{3661, "01:01:01"},
		{36000, "10:00:00"},
	}
	for _, tc := range cases {
		if got := transcript.FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestMarkdownRendering(t *testing.T) {
	published := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	meta := transcript.Metadata{
		Title:     "Episode One",
		Channel:   "daily-tech",
		Published: &published,
		Duration:  "45:30",
		Language:  "en-US",
	}
	segments := []transcript.Segment{
		{Start: 0, End: 2.1, Text: "Hello and welcome.", Speaker: 1},
		{Start: 2.4, End: 5.0, Text: "Thanks for having me.", Speaker: 2},
		{Start: 6.0, End: 8.0, Text: "Unattributed line."},
	}

	md := transcript.Markdown(meta, segments)

	for _, want := range []string{
		"# Episode One",
		"**Channel**: daily-tech",
		"**Published**: 2025-03-14",
		"**Duration**: 45:30",
		"[00:00:00] **Speaker 1**: Hello and welcome.",
		"[00:00:02] **Speaker 2**: Thanks for having me.",
		"[00:00:06] Unattributed line.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Speaker 0") {
		t.Error("speaker 0 must not be labeled")
	}
}

func TestJSONRendering(t *testing.T) {
	meta := transcript.Metadata{Title: "Episode One", Channel: "daily-tech"}
	segments := []transcript.Segment{
		{Start: 2.4, End: 5.0, Text: "Hi.", Speaker: 1},
	}

	raw, err := transcript.JSON(meta, segments)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var doc transcript.JSONDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Title != "Episode One" || doc.Channel != "daily-tech" {
		t.Errorf("metadata = %+v", doc)
	}
	if len(doc.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(doc.Segments))
	}
	seg := doc.Segments[0]
	if seg.Time != "00:00:02" || seg.Start != 2.4 || seg.End != 5.0 || seg.Speaker != 1 || seg.Text != "Hi." {
		t.Errorf("segment = %+v", seg)
	}
}

func TestJSONEmptySegments(t *testing.T) {
	raw, err := transcript.JSON(transcript.Metadata{Title: "Empty"}, nil)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(string(raw), `"segments": []`) {
		t.Errorf("expected empty segments array, got:\n%s", raw)
	}
}
