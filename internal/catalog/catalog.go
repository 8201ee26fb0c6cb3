// The catalog package talks to the external podcast directory and to RSS
// feeds. The core data layer treats its results as opaque candidate records;
// all parsing quirks (XML, HTML-laden descriptions, duration strings) stay
// on this side of the boundary.

package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anragh/medialog/internal/models"
)

// Client queries the podcast directory and fetches feeds.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a catalog client against the given directory base URL
// (normally the iTunes search API root).
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

// SearchResult is one candidate record from the directory, already shaped
// for mapping into a content item creation input.
type SearchResult struct {
	Title      string          `json:"title"`
	ExternalID string          `json:"external_id"`
	Hosts      []string        `json:"hosts,omitempty"`
	FeedURL    string          `json:"feed_url,omitempty"`
	Link       string          `json:"link,omitempty"`
	Images     models.ImageSet `json:"images"`
}

// searchResponse mirrors the directory's JSON shape.
type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		CollectionID   int64  `json:"collectionId"`
		CollectionName string `json:"collectionName"`
		ArtistName     string `json:"artistName"`
		FeedURL        string `json:"feedUrl"`
		CollectionURL  string `json:"collectionViewUrl"`
		ArtworkURL60   string `json:"artworkUrl60"`
		ArtworkURL100  string `json:"artworkUrl100"`
		ArtworkURL600  string `json:"artworkUrl600"`
	} `json:"results"`
}

// SearchPodcasts queries the directory for podcasts matching the term.
func (c *Client) SearchPodcasts(term string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 25
	}
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/search", c.baseURL), nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("media", "podcast")
	q.Add("term", term)
	q.Add("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory search returned status %d", resp.StatusCode)
	}

	var apiResponse searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	results := make([]SearchResult, 0, len(apiResponse.Results))
	for _, r := range apiResponse.Results {
		sr := SearchResult{
			Title:      r.CollectionName,
			ExternalID: strconv.FormatInt(r.CollectionID, 10),
			FeedURL:    r.FeedURL,
			Link:       r.CollectionURL,
			Images: models.ImageSet{
				Small:  r.ArtworkURL60,
				Medium: r.ArtworkURL100,
				Large:  r.ArtworkURL600,
			},
		}
		if r.ArtistName != "" {
			sr.Hosts = []string{r.ArtistName}
		}
		results = append(results, sr)
	}
	return results, nil
}

// validateFeedURL rejects anything that is not a plain http(s) URL before we
// fetch it.
func validateFeedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported feed url scheme %q", u.Scheme)
	}
	return nil
}
