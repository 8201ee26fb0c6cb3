package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/anragh/medialog/internal/models"
)

const recordColumns = `id, content_item_id, date_consumed, rating, notes, episode_id`

// mostRecentSQL picks the record that currently drives the parent's
// denormalized rating: highest date_consumed, ties broken by highest id.
const mostRecentSQL = `SELECT id, rating FROM consumption_records
	WHERE content_item_id = ? ORDER BY date_consumed DESC, id DESC LIMIT 1`

// CreateRecord inserts a consumption record. When the record carries a
// rating, that rating is pushed onto the parent item unconditionally: the
// newest-created record wins at creation time regardless of its date. The
// insert and the parent write share one transaction so concurrent sibling
// mutations cannot interleave between them.
func (s *Store) CreateRecord(input models.CreateRecordInput) (*models.ConsumptionRecord, error) {
	if input.DateConsumed.IsZero() {
		return nil, validationf("date consumed is required")
	}
	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 5) {
		return nil, validationf("rating %g is out of range [0,5]", *input.Rating)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storeErr("create record", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO consumption_records (content_item_id, date_consumed, rating, notes, episode_id)
		VALUES (?, ?, ?, ?, ?)`,
		input.ContentItemID, input.DateConsumed, nullFloat(input.Rating),
		nullString(input.Notes), nullInt64(input.EpisodeID))
	if err != nil {
		// The schema's foreign key rejects records pointing at a missing
		// item; surface that as bad input rather than an I/O failure.
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, validationf("content item %d does not exist", input.ContentItemID)
		}
		return nil, storeErr("create record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storeErr("create record", err)
	}

	if input.Rating != nil {
		if err := setContentRating(tx, input.ContentItemID, input.Rating); err != nil {
			return nil, storeErr("propagate rating", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("create record", err)
	}
	return s.GetRecordByID(id)
}

// UpdateRecord applies a sparse patch. When the patch touches the rating,
// the parent's denormalized rating is refreshed only if this record is still
// the most recent one for its item after the update; otherwise the parent
// keeps reflecting whichever record actually is most recent.
func (s *Store) UpdateRecord(id int64, patch models.RecordPatch) (*models.ConsumptionRecord, error) {
	b := &setBuilder{}
	if patch.DateConsumed.Present() {
		v, ok := patch.DateConsumed.Get()
		if !ok || v.IsZero() {
			return nil, validationf("date consumed cannot be cleared")
		}
		b.add("date_consumed", v)
	}
	if patch.Rating.Present() {
		if v, ok := patch.Rating.Get(); ok {
			if v < 0 || v > 5 {
				return nil, validationf("rating %g is out of range [0,5]", v)
			}
			b.add("rating", v)
		} else {
			b.add("rating", nil)
		}
	}
	applyField(b, "notes", patch.Notes)
	applyField(b, "episode_id", patch.EpisodeID)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storeErr("update record", err)
	}
	defer tx.Rollback()

	var contentItemID int64
	err = tx.QueryRow(`SELECT content_item_id FROM consumption_records WHERE id = ?`, id).Scan(&contentItemID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("update record", err)
	}

	if len(b.clauses) > 0 {
		q := "UPDATE consumption_records SET " + strings.Join(b.clauses, ", ") + " WHERE id = ?"
		if _, err := tx.Exec(q, append(b.args, id)...); err != nil {
			return nil, storeErr("update record", err)
		}
	}

	if patch.Rating.Present() {
		// Recency is evaluated after the update so a patched date counts.
		var topID int64
		var topRating sql.NullFloat64
		err := tx.QueryRow(mostRecentSQL, contentItemID).Scan(&topID, &topRating)
		if err != nil {
			return nil, storeErr("update record", err)
		}
		if topID == id {
			var rating *float64
			if topRating.Valid {
				rating = &topRating.Float64
			}
			if err := setContentRating(tx, contentItemID, rating); err != nil {
				return nil, storeErr("propagate rating", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("update record", err)
	}
	return s.GetRecordByID(id)
}

// DeleteRecord removes a record. If it was the most recent one for its item,
// the parent's denormalized rating is recomputed from whichever record
// remains most recent, or cleared when none remain. Reports whether a row
// was removed.
func (s *Store) DeleteRecord(id int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, storeErr("delete record", err)
	}
	defer tx.Rollback()

	var contentItemID int64
	err = tx.QueryRow(`SELECT content_item_id FROM consumption_records WHERE id = ?`, id).Scan(&contentItemID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storeErr("delete record", err)
	}

	var topID int64
	var topRating sql.NullFloat64
	if err := tx.QueryRow(mostRecentSQL, contentItemID).Scan(&topID, &topRating); err != nil {
		return false, storeErr("delete record", err)
	}
	wasMostRecent := topID == id

	if _, err := tx.Exec(`DELETE FROM consumption_records WHERE id = ?`, id); err != nil {
		return false, storeErr("delete record", err)
	}

	if wasMostRecent {
		var rating *float64
		err := tx.QueryRow(mostRecentSQL, contentItemID).Scan(&topID, &topRating)
		switch {
		case err == sql.ErrNoRows:
			// No records left; the parent's rating goes away with them.
		case err != nil:
			return false, storeErr("delete record", err)
		case topRating.Valid:
			rating = &topRating.Float64
		}
		if err := setContentRating(tx, contentItemID, rating); err != nil {
			return false, storeErr("propagate rating", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, storeErr("delete record", err)
	}
	return true, nil
}

// GetRecordByID returns the record, or nil when no such record exists.
func (s *Store) GetRecordByID(id int64) (*models.ConsumptionRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM consumption_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get record", err)
	}
	return rec, nil
}

// ListRecordsByContentItem returns an item's records, newest consumption first.
func (s *Store) ListRecordsByContentItem(contentItemID int64) ([]*models.ConsumptionRecord, error) {
	return s.queryRecords(`SELECT `+recordColumns+` FROM consumption_records
		WHERE content_item_id = ? ORDER BY date_consumed DESC, id DESC`, contentItemID)
}

// MostRecentRecord returns the record with the highest date_consumed for the
// item (ties broken by highest id), or nil when the item has no records.
func (s *Store) MostRecentRecord(contentItemID int64) (*models.ConsumptionRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM consumption_records
		WHERE content_item_id = ? ORDER BY date_consumed DESC, id DESC LIMIT 1`, contentItemID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get most recent record", err)
	}
	return rec, nil
}

// CountRecords counts the records belonging to one item.
func (s *Store) CountRecords(contentItemID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM consumption_records WHERE content_item_id = ?`, contentItemID).Scan(&n)
	if err != nil {
		return 0, storeErr("count records", err)
	}
	return n, nil
}

// ListAllRecords returns every record, newest consumption first.
func (s *Store) ListAllRecords() ([]*models.ConsumptionRecord, error) {
	return s.queryRecords(`SELECT ` + recordColumns + ` FROM consumption_records
		ORDER BY date_consumed DESC, id DESC`)
}

// ListRecordsForDoneContent returns the records whose parent item has been
// marked done, newest consumption first. This backs the history view.
func (s *Store) ListRecordsForDoneContent() ([]*models.ConsumptionRecord, error) {
	return s.queryRecords(`
		SELECT r.id, r.content_item_id, r.date_consumed, r.rating, r.notes, r.episode_id
		FROM consumption_records r
		JOIN content_items c ON c.id = r.content_item_id
		WHERE c.status = 'done'
		ORDER BY r.date_consumed DESC, r.id DESC`)
}

func (s *Store) queryRecords(query string, args ...any) ([]*models.ConsumptionRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("query records", err)
	}
	defer rows.Close()

	var records []*models.ConsumptionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storeErr("scan record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query records", err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (*models.ConsumptionRecord, error) {
	var (
		rec       models.ConsumptionRecord
		date      time.Time
		rating    sql.NullFloat64
		notes     sql.NullString
		episodeID sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.ContentItemID, &date, &rating, &notes, &episodeID); err != nil {
		return nil, err
	}
	rec.DateConsumed = date
	if rating.Valid {
		rec.Rating = &rating.Float64
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if episodeID.Valid {
		rec.EpisodeID = &episodeID.Int64
	}
	return &rec, nil
}
