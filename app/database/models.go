package database

import (
	"time"
)

// Source is one configured venue whose newsletters feed the pipeline.
type Source struct {
	ID            string // Database UUID
	Name          string // Configuration identifier derived from filename
	ChannelID     string // Telegram channel announcements go to
	Enabled       bool
	LastScannedAt *time.Time // Last archive scan, nil before the first
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Newsletter is one processed newsletter edition, identified by its
// public archive link.
type Newsletter struct {
	ID          string
	SourceID    string
	Link        string
	ReceivedAt  time.Time
	ProcessedAt time.Time
}

// ShowingRecord is one announced showing as persisted; the dedup key
// space lives here.
type ShowingRecord struct {
	ID          string
	SourceID    string
	DedupKey    string
	Title       string
	ShowDate    time.Time
	Showtimes   []string
	Details     string
	AnnouncedAt time.Time
}
