package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ NewsletterRepository = (*NewsletterRepositoryImpl)(nil)

type NewsletterRepositoryImpl struct {
	db *DB
}

func NewNewsletterRepository(db *DB) *NewsletterRepositoryImpl {
	return &NewsletterRepositoryImpl{db: db}
}

// Register inserts a newsletter edition keyed by its archive link. The
// unique constraint makes redelivered editions a no-op; the returned
// bool reports whether the row is new. The source id is resolved first
// so a missing source row is an error, never a false conflict.
func (r *NewsletterRepositoryImpl) Register(sourceName, link string, receivedAt time.Time) (bool, error) {
	sourceID, err := resolveSourceID(r.db, sourceName)
	if err != nil {
		return false, err
	}

	result, err := r.db.Exec(`
		INSERT INTO newsletters (source_id, link, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_id, link) DO NOTHING
	`, sourceID, link, receivedAt)

	if err != nil {
		return false, fmt.Errorf("failed to register newsletter: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return inserted > 0, nil
}

func (r *NewsletterRepositoryImpl) IsRegistered(sourceName, link string) (bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT n.id FROM newsletters n
		JOIN sources s ON s.id = n.source_id
		WHERE s.name = $1 AND n.link = $2
		LIMIT 1
	`, sourceName, link).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check newsletter registration: %w", err)
	}

	return true, nil
}

func (r *NewsletterRepositoryImpl) GetNewsletterCount(sourceName string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM newsletters n
		JOIN sources s ON s.id = n.source_id
		WHERE s.name = $1
	`, sourceName).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to get newsletter count: %w", err)
	}

	return count, nil
}
