// Package output writes transcript artifacts to the local filesystem.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"podscribe/internal/services"
	"podscribe/internal/textutil"
	"podscribe/internal/transcript"
)

// Writer persists transcripts beneath a root directory, one subtree per
// channel and publication date.
type Writer struct {
	root string
}

// NewWriter returns a Writer rooted at the given directory.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Root returns the base output directory.
func (w *Writer) Root() string {
	return w.root
}

// Write renders the transcript as markdown plus a JSON sidecar and returns
// the markdown path. Artifacts land under root/channel/date/title with the
// title sanitized for filesystem use. Both files must land or neither
// counts: callers treat a write failure as retryable.
func (w *Writer) Write(meta transcript.Metadata, segments []transcript.Segment) (string, error) {
	date := time.Now().UTC()
	if meta.Published != nil {
		date = *meta.Published
	}

	dir := filepath.Join(w.root, meta.Channel, date.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrOutput, "output", "write", "create output directory", err)
	}

	base := textutil.SanitizeFileName(meta.Title)
	mdPath := filepath.Join(dir, base+".md")
	jsonPath := filepath.Join(dir, base+".json")

	display := meta
	display.Duration = FormatDuration(meta.Duration)

	if err := os.WriteFile(mdPath, []byte(transcript.Markdown(display, segments)), 0o644); err != nil {
		return "", services.Wrap(services.ErrOutput, "output", "write", "write markdown transcript", err)
	}

	raw, err := transcript.JSON(display, segments)
	if err != nil {
		return "", services.Wrap(services.ErrOutput, "output", "write", "encode transcript json", err)
	}
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return "", services.Wrap(services.ErrOutput, "output", "write", "write transcript json", err)
	}

	return mdPath, nil
}

// FormatDuration turns a duration string of whole seconds into HH:MM:SS,
// or MM:SS when under an hour. Values that are not plain digit strings
// pass through unchanged: feeds commonly publish itunes:duration already
// formatted.
func FormatDuration(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	seconds, err := strconv.Atoi(trimmed)
	if err != nil || seconds < 0 {
		return trimmed
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
