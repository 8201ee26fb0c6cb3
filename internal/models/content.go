// This file defines the core data structures (models) for the application:
// content items, consumption records, and podcast episodes.

package models

import "time"

// Category classifies a content item. The set is closed; each category
// carries its own detail struct on ContentItem.
type Category string

const (
	CategoryBook    Category = "book"
	CategoryTVMovie Category = "tvmovie"
	CategoryPodcast Category = "podcast"
	CategoryDrama   Category = "drama"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBook, CategoryTVMovie, CategoryPodcast, CategoryDrama:
		return true
	}
	return false
}

// RequiresSubtype reports whether items of this category must carry a subtype.
func (c Category) RequiresSubtype() bool {
	return c == CategoryTVMovie || c == CategoryDrama
}

// AllowsSubtype reports whether s is a valid subtype for category c.
func (c Category) AllowsSubtype(s Subtype) bool {
	switch c {
	case CategoryTVMovie:
		return s == SubtypeTV || s == SubtypeMovie
	case CategoryDrama:
		return s == SubtypeMusical || s == SubtypePlay || s == SubtypeDance
	}
	return false
}

// Subtype is a secondary classification for categories with heterogeneous
// shapes (TV vs Movie; Musical/Play/Dance).
type Subtype string

const (
	SubtypeTV      Subtype = "tv"
	SubtypeMovie   Subtype = "movie"
	SubtypeMusical Subtype = "musical"
	SubtypePlay    Subtype = "play"
	SubtypeDance   Subtype = "dance"
)

// Status tracks whether an item is still on the to-do pile.
type Status string

const (
	StatusTodo Status = "todo"
	StatusDone Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusDone
}

// ImageSet holds artwork URL variants for a content item. It is stored as a
// single serialized JSON column.
type ImageSet struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// ContentItem is the central entity: one trackable unit of media. Exactly one
// of the per-category detail pointers is non-nil, matching Category.
type ContentItem struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Category   Category  `json:"category"`
	Status     Status    `json:"status"`
	Rating     *float64  `json:"rating,omitempty"` // denormalized copy of the latest record's rating
	Year       *int      `json:"year,omitempty"`
	ExternalID *string   `json:"external_id,omitempty"`
	Link       *string   `json:"link,omitempty"`
	Images     *ImageSet `json:"images,omitempty"`
	DateAdded  time.Time `json:"date_added"`

	Book    *BookDetails    `json:"book,omitempty"`
	TVMovie *TVMovieDetails `json:"tvmovie,omitempty"`
	Podcast *PodcastDetails `json:"podcast,omitempty"`
	Drama   *DramaDetails   `json:"drama,omitempty"`
}

// BookDetails holds the optional fields valid only for books.
type BookDetails struct {
	Author    *string  `json:"author,omitempty"`
	WordCount *int     `json:"word_count,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// TVMovieDetails holds the optional fields valid only for TV shows and movies.
type TVMovieDetails struct {
	Subtype       Subtype  `json:"subtype"`
	Directors     []string `json:"directors,omitempty"`
	Casts         []string `json:"casts,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	SeasonsCount  *int     `json:"seasons_count,omitempty"`
	CurrentSeason *int     `json:"current_season,omitempty"`
	EpisodesCount *int     `json:"episodes_count,omitempty"`
	Countries     []string `json:"countries,omitempty"`
}

// PodcastDetails holds the optional fields valid only for podcasts.
type PodcastDetails struct {
	Hosts         []string `json:"hosts,omitempty"`
	EpisodesCount *int     `json:"episodes_count,omitempty"`
	FeedURL       *string  `json:"feed_url,omitempty"`
}

// DramaDetails holds the optional fields valid only for staged performances.
type DramaDetails struct {
	Subtype         Subtype  `json:"subtype"`
	Directors       []string `json:"directors,omitempty"`
	Casts           []string `json:"casts,omitempty"`
	Performers      []string `json:"performers,omitempty"`
	Venue           *string  `json:"venue,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
}

// ConsumptionRecord is one dated event of having consumed a content item.
type ConsumptionRecord struct {
	ID            int64     `json:"id"`
	ContentItemID int64     `json:"content_item_id"`
	DateConsumed  time.Time `json:"date_consumed"`
	Rating        *float64  `json:"rating,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	EpisodeID     *int64    `json:"episode_id,omitempty"`
}

// PodcastEpisode is a single episode of a podcast content item, used to tie
// a consumption record to a specific episode. Episodes are created on demand
// and never updated afterwards.
type PodcastEpisode struct {
	ID             int64      `json:"id"`
	PodcastID      int64      `json:"podcast_id"`
	Title          string     `json:"title"`
	EpisodeNumber  *int       `json:"episode_number,omitempty"`
	Description    *string    `json:"description,omitempty"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	DurationMillis *int64     `json:"duration_millis,omitempty"`
}
