package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Field is a three-state optional used by sparse patches. A field is either
// absent (leave the stored value untouched), explicitly null (clear the
// stored value), or set to a value. Plain pointers cannot distinguish the
// first two, so patches carry Fields instead.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Null returns a Field that clears the stored value.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// Present reports whether the field was mentioned in the patch at all.
func (f Field[T]) Present() bool { return f.present }

// IsNull reports whether the field explicitly clears the stored value.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Get returns the carried value. ok is false when the field is absent or null.
func (f Field[T]) Get() (v T, ok bool) {
	if !f.present || f.null {
		return v, false
	}
	return f.value, true
}

// UnmarshalJSON records presence: a JSON null becomes an explicit clear,
// anything else is decoded as a set value. Absent keys never reach this
// method, which is what makes the three-way semantics work.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(data, []byte("null")) {
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON renders absent and null fields as JSON null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// ContentPatch is a sparse update for a content item. Category is not
// patchable; subtype may be corrected but must stay valid for the item's
// category. ID and DateAdded are never patchable.
type ContentPatch struct {
	Title      Field[string]   `json:"title"`
	Status     Field[Status]   `json:"status"`
	Subtype    Field[Subtype]  `json:"subtype"`
	Rating     Field[float64]  `json:"rating"`
	Year       Field[int]      `json:"year"`
	ExternalID Field[string]   `json:"external_id"`
	Link       Field[string]   `json:"link"`
	Images     Field[ImageSet] `json:"images"`

	Author    Field[string]   `json:"author"`
	WordCount Field[int]      `json:"word_count"`
	Tags      Field[[]string] `json:"tags"`

	Directors     Field[[]string] `json:"directors"`
	Casts         Field[[]string] `json:"casts"`
	Genres        Field[[]string] `json:"genres"`
	SeasonsCount  Field[int]      `json:"seasons_count"`
	CurrentSeason Field[int]      `json:"current_season"`
	EpisodesCount Field[int]      `json:"episodes_count"`
	Countries     Field[[]string] `json:"countries"`

	Hosts   Field[[]string] `json:"hosts"`
	FeedURL Field[string]   `json:"feed_url"`

	Performers      Field[[]string] `json:"performers"`
	Venue           Field[string]   `json:"venue"`
	DurationMinutes Field[int]      `json:"duration_minutes"`
}

// RecordPatch is a sparse update for a consumption record. ContentItemID is
// not patchable; records never move between items.
type RecordPatch struct {
	DateConsumed Field[time.Time] `json:"date_consumed"`
	Rating       Field[float64]   `json:"rating"`
	Notes        Field[string]    `json:"notes"`
	EpisodeID    Field[int64]     `json:"episode_id"`
}
