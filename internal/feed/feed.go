// Package feed fetches podcast RSS feeds and extracts the episodes in them.
package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podscribe/internal/textutil"
)

// Episode is one feed entry with a playable audio enclosure.
type Episode struct {
	ID        string
	Title     string
	AudioURL  string
	Published *time.Time
	Duration  string
}

// Feed is a fetched, parsed podcast feed.
type Feed struct {
	Title    string
	Episodes []Episode
}

// Client fetches and parses RSS feeds.
type Client struct {
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	client := &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type rssDocument struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string       `xml:"title"`
	GUID      string       `xml:"guid"`
	Link      string       `xml:"link"`
	PubDate   string       `xml:"pubDate"`
	Duration  string       `xml:"duration"`
	Enclosure rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// Fetch downloads and parses the feed at the given URL. Entries without an
// audio enclosure are skipped; when max is positive only the newest max
// entries (feed order) are returned.
func (c *Client) Fetch(ctx context.Context, feedURL string, max int) (*Feed, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, errors.New("feed url must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", "podscribe/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return Parse(body, max)
}

// Parse extracts episodes from raw RSS bytes.
func Parse(raw []byte, max int) (*Feed, error) {
	var doc rssDocument
	decoder := xml.NewDecoder(strings.NewReader(string(raw)))
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	feed := &Feed{Title: strings.TrimSpace(doc.Channel.Title)}
	for _, item := range doc.Channel.Items {
		audioURL := strings.TrimSpace(item.Enclosure.URL)
		if audioURL == "" || !strings.HasPrefix(strings.ToLower(item.Enclosure.Type), "audio/") {
			continue
		}

		episode := Episode{
			ID:       episodeID(item, audioURL),
			Title:    strings.TrimSpace(item.Title),
			AudioURL: audioURL,
			Duration: strings.TrimSpace(item.Duration),
		}
		if episode.Title == "" {
			episode.Title = "untitled"
		}
		if published, ok := parsePubDate(item.PubDate); ok {
			episode.Published = &published
		}

		feed.Episodes = append(feed.Episodes, episode)
		if max > 0 && len(feed.Episodes) >= max {
			break
		}
	}
	return feed, nil
}

// ChannelSlug derives a filesystem-safe channel name from the feed title.
func (f *Feed) ChannelSlug() string {
	return textutil.SanitizeToken(f.Title)
}

// episodeID prefers a stable guid, then the entry link, then the audio URL.
func episodeID(item rssItem, audioURL string) string {
	if guid := strings.TrimSpace(item.GUID); guid != "" {
		return guid
	}
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	return audioURL
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02",
}

func parsePubDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
