package models

import "time"

// CreateContentInput carries the fields accepted when creating a content
// item. Title and Category are required; Subtype is required when the
// category demands one. Everything else is optional and only meaningful for
// its category; the store nulls the rest.
type CreateContentInput struct {
	Title      string    `json:"title"`
	Category   Category  `json:"category"`
	Subtype    Subtype   `json:"subtype,omitempty"`
	Status     Status    `json:"status,omitempty"` // defaults to todo
	Year       *int      `json:"year,omitempty"`
	ExternalID *string   `json:"external_id,omitempty"`
	Link       *string   `json:"link,omitempty"`
	Images     *ImageSet `json:"images,omitempty"`

	Author    *string  `json:"author,omitempty"`
	WordCount *int     `json:"word_count,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	Directors     []string `json:"directors,omitempty"`
	Casts         []string `json:"casts,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	SeasonsCount  *int     `json:"seasons_count,omitempty"`
	CurrentSeason *int     `json:"current_season,omitempty"`
	EpisodesCount *int     `json:"episodes_count,omitempty"`
	Countries     []string `json:"countries,omitempty"`

	Hosts   []string `json:"hosts,omitempty"`
	FeedURL *string  `json:"feed_url,omitempty"`

	Performers      []string `json:"performers,omitempty"`
	Venue           *string  `json:"venue,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
}

// CreateRecordInput carries the fields accepted when creating a consumption
// record. ContentItemID and DateConsumed are required.
type CreateRecordInput struct {
	ContentItemID int64     `json:"content_item_id"`
	DateConsumed  time.Time `json:"date_consumed"`
	Rating        *float64  `json:"rating,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	EpisodeID     *int64    `json:"episode_id,omitempty"`
}

// EpisodeInput carries the fields for find-or-create of a podcast episode.
type EpisodeInput struct {
	PodcastID      int64      `json:"podcast_id"`
	Title          string     `json:"title"`
	EpisodeNumber  *int       `json:"episode_number,omitempty"`
	Description    *string    `json:"description,omitempty"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	DurationMillis *int64     `json:"duration_millis,omitempty"`
}

// ContentFilter narrows list queries over content items.
type ContentFilter struct {
	Status   *Status
	Category *Category
}
