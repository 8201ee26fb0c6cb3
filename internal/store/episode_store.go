package store

import (
	"database/sql"
	"strings"

	"github.com/anragh/medialog/internal/models"
)

const episodeColumns = `id, podcast_id, title, episode_number, description, release_date, duration_millis`

// FindEpisodeByNumber returns the stored episode with this exact
// (podcast, episode number) pair, or nil when none exists.
func (s *Store) FindEpisodeByNumber(podcastID int64, episodeNumber int) (*models.PodcastEpisode, error) {
	row := s.db.QueryRow(`SELECT `+episodeColumns+` FROM podcast_episodes
		WHERE podcast_id = ? AND episode_number = ?`, podcastID, episodeNumber)
	ep, err := scanEpisode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find episode", err)
	}
	return ep, nil
}

// FindOrCreateEpisode returns the already-stored episode matching the input,
// or creates one. An existing episode is returned unchanged even when the
// input's other fields differ; episodes are never updated. Numbered episodes
// match on (podcast, number); unnumbered ones match on (podcast, title).
func (s *Store) FindOrCreateEpisode(input models.EpisodeInput) (*models.PodcastEpisode, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationf("episode title must not be empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storeErr("find or create episode", err)
	}
	defer tx.Rollback()

	// Try to find the episode first.
	var row *sql.Row
	if input.EpisodeNumber != nil {
		row = tx.QueryRow(`SELECT `+episodeColumns+` FROM podcast_episodes
			WHERE podcast_id = ? AND episode_number = ?`, input.PodcastID, *input.EpisodeNumber)
	} else {
		row = tx.QueryRow(`SELECT `+episodeColumns+` FROM podcast_episodes
			WHERE podcast_id = ? AND episode_number IS NULL AND title = ?`, input.PodcastID, title)
	}
	ep, err := scanEpisode(row)
	if err == nil {
		return ep, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, storeErr("find or create episode", err)
	}

	var release sql.NullTime
	if input.ReleaseDate != nil {
		release = sql.NullTime{Time: *input.ReleaseDate, Valid: true}
	}
	res, err := tx.Exec(`
		INSERT INTO podcast_episodes (podcast_id, title, episode_number, description, release_date, duration_millis)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.PodcastID, title, nullInt(input.EpisodeNumber),
		nullString(input.Description), release, nullInt64(input.DurationMillis))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, validationf("podcast %d does not exist", input.PodcastID)
		}
		return nil, storeErr("create episode", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storeErr("create episode", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("create episode", err)
	}
	return s.GetEpisodeByID(id)
}

// GetEpisodeByID returns the episode, or nil when no such episode exists.
func (s *Store) GetEpisodeByID(id int64) (*models.PodcastEpisode, error) {
	row := s.db.QueryRow(`SELECT `+episodeColumns+` FROM podcast_episodes WHERE id = ?`, id)
	ep, err := scanEpisode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get episode", err)
	}
	return ep, nil
}

// ListEpisodesByPodcast returns a podcast's stored episodes, numbered ones
// first in descending number order, then unnumbered ones by release date
// descending.
func (s *Store) ListEpisodesByPodcast(podcastID int64) ([]*models.PodcastEpisode, error) {
	rows, err := s.db.Query(`SELECT `+episodeColumns+` FROM podcast_episodes
		WHERE podcast_id = ?
		ORDER BY episode_number IS NULL, episode_number DESC, release_date DESC`, podcastID)
	if err != nil {
		return nil, storeErr("list episodes", err)
	}
	defer rows.Close()

	var episodes []*models.PodcastEpisode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, storeErr("scan episode", err)
		}
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list episodes", err)
	}
	return episodes, nil
}

func scanEpisode(row rowScanner) (*models.PodcastEpisode, error) {
	var (
		ep       models.PodcastEpisode
		number   sql.NullInt64
		desc     sql.NullString
		release  sql.NullTime
		duration sql.NullInt64
	)
	if err := row.Scan(&ep.ID, &ep.PodcastID, &ep.Title, &number, &desc, &release, &duration); err != nil {
		return nil, err
	}
	if number.Valid {
		n := int(number.Int64)
		ep.EpisodeNumber = &n
	}
	if desc.Valid {
		ep.Description = &desc.String
	}
	if release.Valid {
		t := release.Time
		ep.ReleaseDate = &t
	}
	if duration.Valid {
		ep.DurationMillis = &duration.Int64
	}
	return &ep, nil
}
