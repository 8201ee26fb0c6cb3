// Periodic feed refresh: keeps the local episode table of every podcast
// with a feed URL in sync with its RSS feed, so consumption flows can link
// episodes without a network round trip.

package refresh

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/anragh/medialog/internal/catalog"
	"github.com/anragh/medialog/internal/models"
	"github.com/anragh/medialog/internal/store"
)

// EpisodeFetcher is the slice of the catalog client the service needs.
type EpisodeFetcher interface {
	FetchEpisodes(feedURL string) ([]catalog.FeedEpisode, error)
}

// Service holds the dependencies for the feed refresh job.
type Service struct {
	st        *store.Store
	fetcher   EpisodeFetcher
	scheduler *gocron.Scheduler
}

// NewService creates a new refresh service.
func NewService(st *store.Store, fetcher EpisodeFetcher) *Service {
	return &Service{
		st:        st,
		fetcher:   fetcher,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the refresh to run every intervalHours hours in the
// background. An interval of zero disables the job.
func (s *Service) Start(intervalHours int) {
	if intervalHours <= 0 {
		log.Println("Feed refresh disabled by configuration.")
		return
	}
	log.Printf("Starting feed refresh service (every %d hours)...", intervalHours)
	s.scheduler.Every(intervalHours).Hours().Do(s.RefreshAll)
	s.scheduler.StartAsync()
}

// Stop halts the scheduler.
func (s *Service) Stop() {
	s.scheduler.Stop()
}

// RefreshAll walks every podcast item that carries a feed URL and refreshes
// its stored episodes. Individual feed failures are logged and skipped; one
// broken feed must not starve the rest.
func (s *Service) RefreshAll() {
	category := models.CategoryPodcast
	items, err := s.st.ListContent(models.ContentFilter{Category: &category})
	if err != nil {
		log.Printf("Feed refresh: failed to list podcasts: %v", err)
		return
	}

	for _, item := range items {
		if item.Podcast == nil || item.Podcast.FeedURL == nil || *item.Podcast.FeedURL == "" {
			continue
		}
		if err := s.RefreshPodcast(item.ID, *item.Podcast.FeedURL); err != nil {
			log.Printf("Feed refresh: podcast %d (%s): %v", item.ID, item.Title, err)
		}
	}
}

// RefreshPodcast fetches one feed and find-or-creates each episode locally.
// Existing episodes are left untouched by find-or-create semantics.
func (s *Service) RefreshPodcast(podcastID int64, feedURL string) error {
	episodes, err := s.fetcher.FetchEpisodes(feedURL)
	if err != nil {
		return err
	}
	for _, ep := range episodes {
		_, err := s.st.FindOrCreateEpisode(models.EpisodeInput{
			PodcastID:      podcastID,
			Title:          ep.Title,
			EpisodeNumber:  ep.EpisodeNumber,
			Description:    ep.Description,
			ReleaseDate:    ep.ReleaseDate,
			DurationMillis: ep.DurationMillis,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
