package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anragh/medialog/internal/models"
	"github.com/anragh/medialog/internal/store"
	"github.com/anragh/medialog/internal/testutil"
)

func setupPodcast(t *testing.T, s *store.Store) *models.ContentItem {
	t.Helper()
	item, err := s.CreateContent(models.CreateContentInput{
		Title:    "The Rest Is History",
		Category: models.CategoryPodcast,
	})
	require.NoError(t, err)
	return item
}

func TestFindOrCreateEpisode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	podcast := setupPodcast(t, s)

	first, err := s.FindOrCreateEpisode(models.EpisodeInput{
		PodcastID:     podcast.ID,
		Title:         "The Fall of Rome",
		EpisodeNumber: intPtr(12),
		Description:   strPtr("Gibbon had opinions."),
	})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 12, *first.EpisodeNumber)

	// Same (podcast, number) with different fields: the stored episode is
	// returned unchanged, never updated.
	second, err := s.FindOrCreateEpisode(models.EpisodeInput{
		PodcastID:     podcast.ID,
		Title:         "Completely different title",
		EpisodeNumber: intPtr(12),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "The Fall of Rome", second.Title)
	require.NotNil(t, second.Description)
	assert.Equal(t, "Gibbon had opinions.", *second.Description)

	// A different number creates a new row.
	third, err := s.FindOrCreateEpisode(models.EpisodeInput{
		PodcastID:     podcast.ID,
		Title:         "The Fall of Rome",
		EpisodeNumber: intPtr(13),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestFindOrCreateEpisodeWithoutNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	podcast := setupPodcast(t, s)

	first, err := s.FindOrCreateEpisode(models.EpisodeInput{
		PodcastID: podcast.ID,
		Title:     "Bonus: Q&A",
	})
	require.NoError(t, err)
	assert.Nil(t, first.EpisodeNumber)

	// Unnumbered episodes dedupe by title.
	second, err := s.FindOrCreateEpisode(models.EpisodeInput{
		PodcastID: podcast.ID,
		Title:     "Bonus: Q&A",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = s.FindOrCreateEpisode(models.EpisodeInput{PodcastID: podcast.ID, Title: "  "})
	assert.True(t, store.IsValidation(err), "blank title must be rejected, got %v", err)

	_, err = s.FindOrCreateEpisode(models.EpisodeInput{PodcastID: 9999, Title: "Orphan"})
	assert.True(t, store.IsValidation(err), "missing podcast must be rejected, got %v", err)
}

func TestFindEpisodeByNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	podcast := setupPodcast(t, s)

	created, err := s.FindOrCreateEpisode(models.EpisodeInput{
		PodcastID:     podcast.ID,
		Title:         "Ep 5",
		EpisodeNumber: intPtr(5),
	})
	require.NoError(t, err)

	found, err := s.FindEpisodeByNumber(podcast.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	found, err = s.FindEpisodeByNumber(podcast.ID, 6)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListEpisodesByPodcast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	podcast := setupPodcast(t, s)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	s.FindOrCreateEpisode(models.EpisodeInput{PodcastID: podcast.ID, Title: "Ep 1", EpisodeNumber: intPtr(1)})
	s.FindOrCreateEpisode(models.EpisodeInput{PodcastID: podcast.ID, Title: "Ep 3", EpisodeNumber: intPtr(3)})
	s.FindOrCreateEpisode(models.EpisodeInput{PodcastID: podcast.ID, Title: "Old special", ReleaseDate: &older})
	s.FindOrCreateEpisode(models.EpisodeInput{PodcastID: podcast.ID, Title: "New special", ReleaseDate: &newer})

	episodes, err := s.ListEpisodesByPodcast(podcast.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 4)

	// Numbered episodes first, highest number leading; unnumbered ones
	// follow by release date descending.
	assert.Equal(t, "Ep 3", episodes[0].Title)
	assert.Equal(t, "Ep 1", episodes[1].Title)
	assert.Equal(t, "New special", episodes[2].Title)
	assert.Equal(t, "Old special", episodes[3].Title)
}
