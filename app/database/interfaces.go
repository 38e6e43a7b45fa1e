package database

import (
	"time"

	"github.com/giovanniberti/cartellone/app/newsletter"
)

type SourceRepository interface {
	GetSource(sourceName string) (*Source, error)
	GetSources() ([]Source, error)
	GetSourceCount() (int, error)

	UpsertSource(sourceName, channelID string, enabled bool) error
	UpdateLastScanned(sourceName string, scannedAt time.Time) error
}

type NewsletterRepository interface {
	// Register records a newsletter edition if its link is not yet
	// known, returning whether it was newly inserted.
	Register(sourceName, link string, receivedAt time.Time) (bool, error)
	IsRegistered(sourceName, link string) (bool, error)
	GetNewsletterCount(sourceName string) (int, error)
}

type ShowingRepository interface {
	// Record inserts a showing's dedup key if absent, returning whether
	// it was newly inserted. This is the single novelty decision point;
	// it must stay one conditional insert, never a read followed by a
	// write.
	Record(sourceName string, s newsletter.Showing) (bool, error)
	IsRecorded(sourceName, dedupKey string) (bool, error)
	GetShowingCount(sourceName string) (int, error)
	GetRecentShowings(sourceName string, limit int) ([]ShowingRecord, error)
}
