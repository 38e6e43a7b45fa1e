package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

type SourceRepositoryImpl struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

func (r *SourceRepositoryImpl) GetSource(sourceName string) (*Source, error) {
	var source Source
	err := r.db.QueryRow(`
		SELECT id, name, channel_id, enabled, last_scanned_at, created_at, updated_at
		FROM sources
		WHERE name = $1
	`, sourceName).Scan(
		&source.ID, &source.Name, &source.ChannelID, &source.Enabled,
		&source.LastScannedAt, &source.CreatedAt, &source.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepositoryImpl) GetSources() ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT id, name, channel_id, enabled, last_scanned_at, created_at, updated_at
		FROM sources
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var source Source
		err := rows.Scan(
			&source.ID, &source.Name, &source.ChannelID, &source.Enabled,
			&source.LastScannedAt, &source.CreatedAt, &source.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *SourceRepositoryImpl) UpsertSource(sourceName, channelID string, enabled bool) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (name, channel_id, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
	`, sourceName, channelID, enabled)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// resolveSourceID maps a configured source name to its database id. A
// missing row is an error: sources are synced from the YAML configs,
// and a name without a row must surface as a failure rather than pass
// for a dedup conflict downstream.
func resolveSourceID(db *DB, sourceName string) (string, error) {
	var id string
	err := db.QueryRow("SELECT id FROM sources WHERE name = $1", sourceName).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("source %q not found in database", sourceName)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve source: %w", err)
	}
	return id, nil
}

func (r *SourceRepositoryImpl) UpdateLastScanned(sourceName string, scannedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_scanned_at = $2, updated_at = NOW()
		WHERE name = $1
	`, sourceName, scannedAt)

	if err != nil {
		return fmt.Errorf("failed to update last scanned time: %w", err)
	}

	return nil
}
