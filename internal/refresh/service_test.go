package refresh_test

import (
	"errors"
	"testing"

	"github.com/anragh/medialog/internal/catalog"
	"github.com/anragh/medialog/internal/models"
	"github.com/anragh/medialog/internal/refresh"
	"github.com/anragh/medialog/internal/store"
	"github.com/anragh/medialog/internal/testutil"
)

// fakeFetcher serves canned feed results keyed by feed URL.
type fakeFetcher struct {
	feeds map[string][]catalog.FeedEpisode
	calls []string
}

func (f *fakeFetcher) FetchEpisodes(feedURL string) ([]catalog.FeedEpisode, error) {
	f.calls = append(f.calls, feedURL)
	episodes, ok := f.feeds[feedURL]
	if !ok {
		return nil, errors.New("feed unreachable")
	}
	return episodes, nil
}

func intp(v int) *int { return &v }

func setupPodcast(t *testing.T, st *store.Store, title string, feedURL *string) *models.ContentItem {
	t.Helper()
	item, err := st.CreateContent(models.CreateContentInput{
		Title:    title,
		Category: models.CategoryPodcast,
		FeedURL:  feedURL,
	})
	if err != nil {
		t.Fatalf("Failed to create podcast %q: %v", title, err)
	}
	return item
}

func TestRefreshAll(t *testing.T) {
	database := testutil.SetupTestDB(t)
	st := store.New(database)

	goodFeed := "https://feeds.example/history.xml"
	badFeed := "https://feeds.example/broken.xml"
	withFeed := setupPodcast(t, st, "Hardcore History", &goodFeed)
	broken := setupPodcast(t, st, "Broken Feed", &badFeed)
	setupPodcast(t, st, "No Feed", nil)

	fetcher := &fakeFetcher{feeds: map[string][]catalog.FeedEpisode{
		goodFeed: {
			{Title: "Supernova in the East", EpisodeNumber: intp(1)},
			{Title: "Supernova in the East II", EpisodeNumber: intp(2)},
		},
	}}

	svc := refresh.NewService(st, fetcher)
	svc.RefreshAll()

	if len(fetcher.calls) != 2 {
		t.Fatalf("Expected 2 fetches (feed-less podcast skipped), got %v", fetcher.calls)
	}

	episodes, err := st.ListEpisodesByPodcast(withFeed.ID)
	if err != nil {
		t.Fatalf("Failed to list episodes: %v", err)
	}
	if len(episodes) != 2 {
		t.Errorf("Expected 2 stored episodes, got %d", len(episodes))
	}

	// The broken feed fails but must not leave partial rows behind.
	episodes, _ = st.ListEpisodesByPodcast(broken.ID)
	if len(episodes) != 0 {
		t.Errorf("Expected no episodes for broken feed, got %d", len(episodes))
	}
}

func TestRefreshPodcastIsIdempotent(t *testing.T) {
	database := testutil.SetupTestDB(t)
	st := store.New(database)

	feed := "https://feeds.example/history.xml"
	podcast := setupPodcast(t, st, "Hardcore History", &feed)

	fetcher := &fakeFetcher{feeds: map[string][]catalog.FeedEpisode{
		feed: {{Title: "Supernova in the East", EpisodeNumber: intp(1)}},
	}}
	svc := refresh.NewService(st, fetcher)

	for i := 0; i < 3; i++ {
		if err := svc.RefreshPodcast(podcast.ID, feed); err != nil {
			t.Fatalf("Refresh %d failed: %v", i, err)
		}
	}

	episodes, err := st.ListEpisodesByPodcast(podcast.ID)
	if err != nil {
		t.Fatalf("Failed to list episodes: %v", err)
	}
	if len(episodes) != 1 {
		t.Errorf("Expected 1 episode after repeated refreshes, got %d", len(episodes))
	}
}
