package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anragh/medialog/internal/models"
)

// contentColumns is the canonical column list for content item scans. The
// deprecated poster_url and creator columns are carried by the schema but
// not surfaced on the model; creator still participates in search.
const contentColumns = `id, title, category, subtype, status, rating, year, external_id, link, images,
	author, word_count, tags, hosts, episodes_count, feed_url,
	directors, casts, genres, seasons_count, current_season, countries,
	performers, venue, duration_minutes, date_added`

// CreateContent validates the input, inserts the item and returns the full
// created record. Fields that are not meaningful for the item's category are
// stored as NULL regardless of what the input carries.
func (s *Store) CreateContent(input models.CreateContentInput) (*models.ContentItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationf("title must not be empty")
	}
	if !input.Category.Valid() {
		return nil, validationf("unknown category %q", input.Category)
	}

	var subtype sql.NullString
	if input.Category.RequiresSubtype() {
		if input.Subtype == "" {
			return nil, validationf("category %s requires a subtype", input.Category)
		}
		if !input.Category.AllowsSubtype(input.Subtype) {
			return nil, validationf("subtype %q is not valid for category %s", input.Subtype, input.Category)
		}
		subtype = sql.NullString{String: string(input.Subtype), Valid: true}
	}

	status := input.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}

	var images sql.NullString
	if input.Images != nil {
		blob, err := json.Marshal(input.Images)
		if err != nil {
			return nil, storeErr("encode images", err)
		}
		images = sql.NullString{String: string(blob), Valid: true}
	}

	// Category-specific fields: keep the input's values for the item's own
	// category, null everything else.
	var (
		author, feedURL, venue                              sql.NullString
		tags, hosts, directors, casts, genres               sql.NullString
		countries, performers                               sql.NullString
		wordCount, episodesCount, seasonsCount              sql.NullInt64
		currentSeason, durationMinutes                      sql.NullInt64
		err                                                 error
	)
	switch input.Category {
	case models.CategoryBook:
		author = nullString(input.Author)
		wordCount = nullInt(input.WordCount)
		if tags, err = encodeList(input.Tags); err != nil {
			return nil, storeErr("encode tags", err)
		}
	case models.CategoryTVMovie:
		if directors, err = encodeList(input.Directors); err != nil {
			return nil, storeErr("encode directors", err)
		}
		if casts, err = encodeList(input.Casts); err != nil {
			return nil, storeErr("encode casts", err)
		}
		if genres, err = encodeList(input.Genres); err != nil {
			return nil, storeErr("encode genres", err)
		}
		if countries, err = encodeList(input.Countries); err != nil {
			return nil, storeErr("encode countries", err)
		}
		seasonsCount = nullInt(input.SeasonsCount)
		currentSeason = nullInt(input.CurrentSeason)
		episodesCount = nullInt(input.EpisodesCount)
	case models.CategoryPodcast:
		if hosts, err = encodeList(input.Hosts); err != nil {
			return nil, storeErr("encode hosts", err)
		}
		episodesCount = nullInt(input.EpisodesCount)
		feedURL = nullString(input.FeedURL)
	case models.CategoryDrama:
		if directors, err = encodeList(input.Directors); err != nil {
			return nil, storeErr("encode directors", err)
		}
		if casts, err = encodeList(input.Casts); err != nil {
			return nil, storeErr("encode casts", err)
		}
		if performers, err = encodeList(input.Performers); err != nil {
			return nil, storeErr("encode performers", err)
		}
		venue = nullString(input.Venue)
		durationMinutes = nullInt(input.DurationMinutes)
	}

	res, err := s.db.Exec(`
		INSERT INTO content_items
		(title, category, subtype, status, year, external_id, link, images,
		 author, word_count, tags, hosts, episodes_count, feed_url,
		 directors, casts, genres, seasons_count, current_season, countries,
		 performers, venue, duration_minutes, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		title, string(input.Category), subtype, string(status),
		nullInt(input.Year), nullString(input.ExternalID), nullString(input.Link), images,
		author, wordCount, tags, hosts, episodesCount, feedURL,
		directors, casts, genres, seasonsCount, currentSeason, countries,
		performers, venue, durationMinutes, time.Now())
	if err != nil {
		return nil, storeErr("insert content item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storeErr("insert content item", err)
	}
	return s.GetContentByID(id)
}

// GetContentByID returns the item, or nil when no such item exists. Callers
// routinely probe for existence, so a miss is not an error.
func (s *Store) GetContentByID(id int64) (*models.ContentItem, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanContentItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get content item", err)
	}
	return item, nil
}

// ListContent returns all items matching the optional filters, most recently
// added first.
func (s *Store) ListContent(filter models.ContentFilter) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items`
	var where []string
	var args []any
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*filter.Category))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_added DESC, id DESC"

	return s.queryContentItems(query, args...)
}

// SearchContent matches the query as a case-insensitive substring of the
// title, any creator-like field (author, hosts, directors) or the legacy
// creator column, with optional status/category narrowing.
func (s *Store) SearchContent(query string, status *models.Status, category *models.Category) ([]*models.ContentItem, error) {
	needle := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	where := []string{`(LOWER(title) LIKE ?
		OR LOWER(IFNULL(author, '')) LIKE ?
		OR LOWER(IFNULL(hosts, '')) LIKE ?
		OR LOWER(IFNULL(directors, '')) LIKE ?
		OR LOWER(IFNULL(creator, '')) LIKE ?)`}
	args := []any{needle, needle, needle, needle, needle}
	if status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*status))
	}
	if category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*category))
	}

	q := `SELECT ` + contentColumns + ` FROM content_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date_added DESC, id DESC`
	return s.queryContentItems(q, args...)
}

// FindExistingContent looks for a duplicate before creating an item from an
// external-search flow: case-insensitive exact title, exact category, and
// exact subtype when the category requires one. Returns nil when no match.
func (s *Store) FindExistingContent(title string, category models.Category, subtype models.Subtype) (*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE LOWER(title) = LOWER(?) AND category = ?`
	args := []any{strings.TrimSpace(title), string(category)}
	if category.RequiresSubtype() {
		query += " AND subtype = ?"
		args = append(args, string(subtype))
	}
	query += " ORDER BY id ASC LIMIT 1"

	row := s.db.QueryRow(query, args...)
	item, err := scanContentItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find existing content item", err)
	}
	return item, nil
}

// CountContent counts items, optionally restricted to one status.
func (s *Store) CountContent(status *models.Status) (int, error) {
	query := "SELECT COUNT(*) FROM content_items"
	var args []any
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, storeErr("count content items", err)
	}
	return n, nil
}

// UpdateContent applies a sparse patch and returns the updated item. Fields
// absent from the patch are untouched; explicitly null fields are cleared.
// Returns ErrNotFound when the id does not exist. Patch fields that are not
// meaningful for the item's category are ignored, mirroring how they would
// never have been stored in the first place.
func (s *Store) UpdateContent(id int64, patch models.ContentPatch) (*models.ContentItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, storeErr("update content item", err)
	}
	defer tx.Rollback()

	var category models.Category
	err = tx.QueryRow(`SELECT category FROM content_items WHERE id = ?`, id).Scan(&category)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("update content item", err)
	}

	b := &setBuilder{}
	if err := buildContentSets(b, category, patch); err != nil {
		return nil, err
	}

	if len(b.clauses) > 0 {
		q := "UPDATE content_items SET " + strings.Join(b.clauses, ", ") + " WHERE id = ?"
		if _, err := tx.Exec(q, append(b.args, id)...); err != nil {
			return nil, storeErr("update content item", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("update content item", err)
	}
	return s.GetContentByID(id)
}

// DeleteContent removes the item. Its consumption records and podcast
// episodes go with it via foreign key cascade. Reports whether a row was
// actually removed.
func (s *Store) DeleteContent(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return false, storeErr("delete content item", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete content item", err)
	}
	return affected > 0, nil
}

// setContentRating writes the denormalized rating inside an existing
// transaction. A nil rating clears it.
func setContentRating(tx *sql.Tx, id int64, rating *float64) error {
	_, err := tx.Exec(`UPDATE content_items SET rating = ? WHERE id = ?`, nullFloat(rating), id)
	return err
}

func buildContentSets(b *setBuilder, category models.Category, patch models.ContentPatch) error {
	if patch.Title.Present() {
		v, ok := patch.Title.Get()
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return validationf("title must not be empty")
		}
		b.add("title", v)
	}
	if patch.Status.Present() {
		v, ok := patch.Status.Get()
		if !ok || !v.Valid() {
			return validationf("unknown status %q", v)
		}
		b.add("status", string(v))
	}
	if patch.Subtype.Present() {
		if !category.RequiresSubtype() {
			return validationf("category %s does not carry a subtype", category)
		}
		v, ok := patch.Subtype.Get()
		if !ok || !category.AllowsSubtype(v) {
			return validationf("subtype %q is not valid for category %s", v, category)
		}
		b.add("subtype", string(v))
	}
	if patch.Rating.Present() {
		if v, ok := patch.Rating.Get(); ok {
			if v < 0 || v > 5 {
				return validationf("rating %g is out of range [0,5]", v)
			}
			b.add("rating", v)
		} else {
			b.add("rating", nil)
		}
	}
	applyField(b, "year", patch.Year)
	applyField(b, "external_id", patch.ExternalID)
	applyField(b, "link", patch.Link)
	if err := applyImagesField(b, patch.Images); err != nil {
		return err
	}

	switch category {
	case models.CategoryBook:
		applyField(b, "author", patch.Author)
		applyField(b, "word_count", patch.WordCount)
		if err := applyListField(b, "tags", patch.Tags); err != nil {
			return err
		}
	case models.CategoryTVMovie:
		if err := applyListField(b, "directors", patch.Directors); err != nil {
			return err
		}
		if err := applyListField(b, "casts", patch.Casts); err != nil {
			return err
		}
		if err := applyListField(b, "genres", patch.Genres); err != nil {
			return err
		}
		if err := applyListField(b, "countries", patch.Countries); err != nil {
			return err
		}
		applyField(b, "seasons_count", patch.SeasonsCount)
		applyField(b, "current_season", patch.CurrentSeason)
		applyField(b, "episodes_count", patch.EpisodesCount)
	case models.CategoryPodcast:
		if err := applyListField(b, "hosts", patch.Hosts); err != nil {
			return err
		}
		applyField(b, "episodes_count", patch.EpisodesCount)
		applyField(b, "feed_url", patch.FeedURL)
	case models.CategoryDrama:
		if err := applyListField(b, "directors", patch.Directors); err != nil {
			return err
		}
		if err := applyListField(b, "casts", patch.Casts); err != nil {
			return err
		}
		if err := applyListField(b, "performers", patch.Performers); err != nil {
			return err
		}
		applyField(b, "venue", patch.Venue)
		applyField(b, "duration_minutes", patch.DurationMinutes)
	}
	return nil
}

// setBuilder accumulates SET clauses for a dynamic UPDATE.
type setBuilder struct {
	clauses []string
	args    []any
}

func (b *setBuilder) add(col string, v any) {
	b.clauses = append(b.clauses, col+" = ?")
	b.args = append(b.args, v)
}

func applyField[T any](b *setBuilder, col string, f models.Field[T]) {
	if !f.Present() {
		return
	}
	if v, ok := f.Get(); ok {
		b.add(col, v)
	} else {
		b.add(col, nil)
	}
}

func applyListField(b *setBuilder, col string, f models.Field[[]string]) error {
	if !f.Present() {
		return nil
	}
	if v, ok := f.Get(); ok {
		ns, err := encodeList(v)
		if err != nil {
			return storeErr("encode "+col, err)
		}
		b.add(col, ns)
	} else {
		b.add(col, nil)
	}
	return nil
}

func applyImagesField(b *setBuilder, f models.Field[models.ImageSet]) error {
	if !f.Present() {
		return nil
	}
	if v, ok := f.Get(); ok {
		blob, err := json.Marshal(v)
		if err != nil {
			return storeErr("encode images", err)
		}
		b.add("images", string(blob))
	} else {
		b.add("images", nil)
	}
	return nil
}

func (s *Store) queryContentItems(query string, args ...any) ([]*models.ContentItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("query content items", err)
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, storeErr("scan content item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query content items", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanContentItem reads one row in contentColumns order and assembles the
// tagged per-category detail struct.
func scanContentItem(row rowScanner) (*models.ContentItem, error) {
	var (
		item       models.ContentItem
		category   string
		status     string
		subtype    sql.NullString
		rating     sql.NullFloat64
		year       sql.NullInt64
		externalID sql.NullString
		link       sql.NullString
		images     sql.NullString

		author    sql.NullString
		wordCount sql.NullInt64
		tags      sql.NullString

		hosts         sql.NullString
		episodesCount sql.NullInt64
		feedURL       sql.NullString

		directors     sql.NullString
		casts         sql.NullString
		genres        sql.NullString
		seasonsCount  sql.NullInt64
		currentSeason sql.NullInt64
		countries     sql.NullString

		performers      sql.NullString
		venue           sql.NullString
		durationMinutes sql.NullInt64
	)
	err := row.Scan(&item.ID, &item.Title, &category, &subtype, &status, &rating, &year, &externalID, &link, &images,
		&author, &wordCount, &tags, &hosts, &episodesCount, &feedURL,
		&directors, &casts, &genres, &seasonsCount, &currentSeason, &countries,
		&performers, &venue, &durationMinutes, &item.DateAdded)
	if err != nil {
		return nil, err
	}

	item.Category = models.Category(category)
	item.Status = models.Status(status)
	if rating.Valid {
		item.Rating = &rating.Float64
	}
	if year.Valid {
		y := int(year.Int64)
		item.Year = &y
	}
	if externalID.Valid {
		item.ExternalID = &externalID.String
	}
	if link.Valid {
		item.Link = &link.String
	}
	if images.Valid && images.String != "" {
		var set models.ImageSet
		if err := json.Unmarshal([]byte(images.String), &set); err == nil {
			item.Images = &set
		}
	}

	switch item.Category {
	case models.CategoryBook:
		d := &models.BookDetails{Tags: decodeList(tags)}
		if author.Valid {
			d.Author = &author.String
		}
		if wordCount.Valid {
			wc := int(wordCount.Int64)
			d.WordCount = &wc
		}
		item.Book = d
	case models.CategoryTVMovie:
		d := &models.TVMovieDetails{
			Subtype:   models.Subtype(subtype.String),
			Directors: decodeList(directors),
			Casts:     decodeList(casts),
			Genres:    decodeList(genres),
			Countries: decodeList(countries),
		}
		if seasonsCount.Valid {
			n := int(seasonsCount.Int64)
			d.SeasonsCount = &n
		}
		if currentSeason.Valid {
			n := int(currentSeason.Int64)
			d.CurrentSeason = &n
		}
		if episodesCount.Valid {
			n := int(episodesCount.Int64)
			d.EpisodesCount = &n
		}
		item.TVMovie = d
	case models.CategoryPodcast:
		d := &models.PodcastDetails{Hosts: decodeList(hosts)}
		if episodesCount.Valid {
			n := int(episodesCount.Int64)
			d.EpisodesCount = &n
		}
		if feedURL.Valid {
			d.FeedURL = &feedURL.String
		}
		item.Podcast = d
	case models.CategoryDrama:
		d := &models.DramaDetails{
			Subtype:    models.Subtype(subtype.String),
			Directors:  decodeList(directors),
			Casts:      decodeList(casts),
			Performers: decodeList(performers),
		}
		if venue.Valid {
			d.Venue = &venue.String
		}
		if durationMinutes.Valid {
			n := int(durationMinutes.Int64)
			d.DurationMinutes = &n
		}
		item.Drama = d
	default:
		return nil, fmt.Errorf("unknown category %q on item %d", category, item.ID)
	}

	return &item, nil
}
