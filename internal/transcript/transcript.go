// Package transcript renders recognized speech segments into the
// markdown and JSON artifact formats.
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Segment is one recognized utterance with offsets in seconds from the
// start of the recording.
type Segment struct {
	Start   float64
	End     float64
	Text    string
	Speaker int
}

// Metadata describes the episode a transcript belongs to.
type Metadata struct {
	Title     string
	Channel   string
	Published *time.Time
	Duration  string
	Language  string
}

// FormatTimestamp renders an offset in seconds as HH:MM:SS.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Markdown renders the transcript document: a metadata header followed by
// one timestamped line per segment. Speaker labels appear only when the
// recognizer attributed a speaker.
func Markdown(meta Metadata, segments []Segment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	if meta.Channel != "" {
		fmt.Fprintf(&b, "**Channel**: %s\n", meta.Channel)
	}
	if meta.Published != nil {
		fmt.Fprintf(&b, "**Published**: %s\n", meta.Published.Format("2006-01-02"))
	}
	if meta.Duration != "" {
		fmt.Fprintf(&b, "**Duration**: %s\n", meta.Duration)
	}
	if meta.Language != "" {
		fmt.Fprintf(&b, "**Language**: %s\n", meta.Language)
	}
	b.WriteString("\n---\n\n")

	for _, seg := range segments {
		if seg.Speaker > 0 {
			fmt.Fprintf(&b, "[%s] **Speaker %d**: %s\n\n", FormatTimestamp(seg.Start), seg.Speaker, seg.Text)
		} else {
			fmt.Fprintf(&b, "[%s] %s\n\n", FormatTimestamp(seg.Start), seg.Text)
		}
	}

	return b.String()
}

// JSONSegment is the machine-readable form of a segment.
type JSONSegment struct {
	Time    string  `json:"time"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker int     `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

// JSONDocument is the full machine-readable transcript artifact.
type JSONDocument struct {
	Title     string        `json:"title"`
	Channel   string        `json:"channel"`
	Published string        `json:"published,omitempty"`
	Duration  string        `json:"duration,omitempty"`
	Language  string        `json:"language,omitempty"`
	Segments  []JSONSegment `json:"segments"`
}

// JSON renders the transcript as indented JSON.
func JSON(meta Metadata, segments []Segment) ([]byte, error) {
	doc := JSONDocument{
		Title:    meta.Title,
		Channel:  meta.Channel,
		Duration: meta.Duration,
		Language: meta.Language,
		Segments: make([]JSONSegment, 0, len(segments)),
	}
	if meta.Published != nil {
		doc.Published = meta.Published.Format(time.RFC3339)
	}
	for _, seg := range segments {
		doc.Segments = append(doc.Segments, JSONSegment{
			Time:    FormatTimestamp(seg.Start),
			Start:   seg.Start,
			End:     seg.End,
			Speaker: seg.Speaker,
			Text:    seg.Text,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}
