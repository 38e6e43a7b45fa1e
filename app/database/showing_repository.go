package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/giovanniberti/cartellone/app/newsletter"
)

var _ ShowingRepository = (*ShowingRepositoryImpl)(nil)

type ShowingRepositoryImpl struct {
	db *DB
}

func NewShowingRepository(db *DB) *ShowingRepositoryImpl {
	return &ShowingRepositoryImpl{db: db}
}

// Record inserts a showing under its dedup key. The unique constraint
// on (source_id, dedup_key) makes the insert the atomic novelty check:
// concurrent deliveries of the same showing race on the constraint and
// exactly one sees RowsAffected == 1. The source id is resolved first
// so a missing source row is an error, never a false conflict.
func (r *ShowingRepositoryImpl) Record(sourceName string, s newsletter.Showing) (bool, error) {
	sourceID, err := resolveSourceID(r.db, sourceName)
	if err != nil {
		return false, err
	}

	times := make([]string, 0, len(s.Times))
	for _, t := range s.Times {
		times = append(times, t.String())
	}

	result, err := r.db.Exec(`
		INSERT INTO showings (source_id, dedup_key, title, show_date, showtimes, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_id, dedup_key) DO NOTHING
	`, sourceID, s.Key(), s.Title, s.Date, pq.Array(times), s.Details)

	if err != nil {
		return false, fmt.Errorf("failed to record showing: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return inserted > 0, nil
}

func (r *ShowingRepositoryImpl) IsRecorded(sourceName, dedupKey string) (bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT sh.id FROM showings sh
		JOIN sources s ON s.id = sh.source_id
		WHERE s.name = $1 AND sh.dedup_key = $2
		LIMIT 1
	`, sourceName, dedupKey).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check showing: %w", err)
	}

	return true, nil
}

func (r *ShowingRepositoryImpl) GetShowingCount(sourceName string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM showings sh
		JOIN sources s ON s.id = sh.source_id
		WHERE s.name = $1
	`, sourceName).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to get showing count: %w", err)
	}

	return count, nil
}

func (r *ShowingRepositoryImpl) GetRecentShowings(sourceName string, limit int) ([]ShowingRecord, error) {
	rows, err := r.db.Query(`
		SELECT sh.id, sh.source_id, sh.dedup_key, sh.title, sh.show_date,
		       COALESCE(sh.showtimes, '{}'), COALESCE(sh.details, ''), sh.announced_at
		FROM showings sh
		JOIN sources s ON s.id = sh.source_id
		WHERE s.name = $1
		ORDER BY sh.show_date DESC, sh.announced_at DESC
		LIMIT $2
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent showings: %w", err)
	}
	defer rows.Close()

	var showings []ShowingRecord
	for rows.Next() {
		var rec ShowingRecord
		err := rows.Scan(
			&rec.ID, &rec.SourceID, &rec.DedupKey, &rec.Title, &rec.ShowDate,
			pq.Array(&rec.Showtimes), &rec.Details, &rec.AnnouncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan showing row: %w", err)
		}
		showings = append(showings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating showing rows: %w", err)
	}

	return showings, nil
}
