package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FeedEpisode is one episode parsed out of an RSS feed, shaped for the
// episode sub-store's find-or-create input.
type FeedEpisode struct {
	Title          string     `json:"title"`
	EpisodeNumber  *int       `json:"episode_number,omitempty"`
	Description    *string    `json:"description,omitempty"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	DurationMillis *int64     `json:"duration_millis,omitempty"`
}

// rssDocument mirrors the subset of the RSS/itunes namespace we care about.
// Go's XML decoder matches namespaced elements by local name here, which
// covers both plain and itunes-prefixed tags.
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Episode     string `xml:"episode"`
	Duration    string `xml:"duration"`
	PubDate     string `xml:"pubDate"`
}

// FetchEpisodes downloads and parses an RSS feed into episode records,
// newest-first in whatever order the feed lists them.
func (c *Client) FetchEpisodes(feedURL string) ([]FeedEpisode, error) {
	if err := validateFeedURL(feedURL); err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Get(feedURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch returned status %d", resp.StatusCode)
	}

	var doc rssDocument
	decoder := xml.NewDecoder(resp.Body)
	// Podcast feeds are frequently served in legacy encodings.
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	episodes := make([]FeedEpisode, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		ep := FeedEpisode{Title: title}
		if n, err := strconv.Atoi(strings.TrimSpace(item.Episode)); err == nil {
			ep.EpisodeNumber = &n
		}
		if desc := cleanDescription(item.Description); desc != "" {
			ep.Description = &desc
		}
		if t, ok := parsePubDate(item.PubDate); ok {
			ep.ReleaseDate = &t
		}
		if ms, ok := parseDurationMillis(item.Duration); ok {
			ep.DurationMillis = &ms
		}
		episodes = append(episodes, ep)
	}
	return episodes, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanDescription strips HTML markup and entities from a feed description,
// collapsing the leftover whitespace.
func cleanDescription(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	text := doc.Text()
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// parseDurationMillis handles the duration formats feeds actually use:
// "HH:MM:SS", "MM:SS" and plain seconds.
func parseDurationMillis(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var seconds int64
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		seconds = seconds*60 + n
	}
	return seconds * 1000, true
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

func parsePubDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
