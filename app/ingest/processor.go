package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giovanniberti/cartellone/app/database"
	"github.com/giovanniberti/cartellone/app/newsletter"
	"github.com/giovanniberti/cartellone/app/source"
	"github.com/giovanniberti/cartellone/app/telegram"
)

// Publisher delivers announcement messages to a channel.
type Publisher interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Summary counts what one pipeline run did with a newsletter.
type Summary struct {
	Blocks     int `json:"blocks"`
	Entries    int `json:"entries"`
	Published  int `json:"published"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// Processor runs a newsletter through extraction, parsing,
// normalization, the novelty check, and publication. Both the webhook
// handler and the archive scanner feed it, so the two paths converge on
// the same dedup key space.
type Processor struct {
	newsletterRepo database.NewsletterRepository
	showingRepo    database.ShowingRepository
	publisher      Publisher
	notifier       *telegram.Notifier
}

func NewProcessor(newsletterRepo database.NewsletterRepository,
	showingRepo database.ShowingRepository, publisher Publisher,
	notifier *telegram.Notifier) *Processor {
	return &Processor{
		newsletterRepo: newsletterRepo,
		showingRepo:    showingRepo,
		publisher:      publisher,
		notifier:       notifier,
	}
}

// Run processes one newsletter body for a source. Failures in one film
// block never abort sibling blocks; a storage failure on the novelty
// check fails closed for that showing only (no announcement, counted as
// skipped, retried on redelivery). A publication failure after a
// successful record is reported but not rolled back.
func (p *Processor) Run(ctx context.Context, src *source.Config, htmlBody string, receivedAt time.Time) (Summary, error) {
	runID := uuid.NewString()[:8]
	logger := slog.With("run_id", runID, "source", src.Name)

	var summary Summary

	extractor := newsletter.NewExtractor(src.Selectors.Title, src.Selectors.Container)

	if link := extractor.ArchiveLink(htmlBody); link != "" {
		if _, err := p.newsletterRepo.Register(src.Name, link, receivedAt); err != nil {
			logger.Warn("Failed to register newsletter", "link", link, "error", err)
		}
	}

	blocks, extractErrs := extractor.Extract(htmlBody)
	for _, err := range extractErrs {
		p.notifier.ReportError(ctx, "Extraction failed for "+src.Name, err)
	}
	if len(blocks) == 0 && len(extractErrs) > 0 {
		return summary, fmt.Errorf("no film blocks extracted: %w", extractErrs[0])
	}

	normalizer := newsletter.NewNormalizer(src.Location())

	for _, block := range blocks {
		summary.Blocks++

		segments, err := newsletter.ParseBlock(block)
		if err != nil {
			if errors.Is(err, newsletter.ErrNoEntries) {
				logger.Debug("Block has no schedule entries, skipping", "title", block.Title)
			} else {
				p.notifier.ReportError(ctx, "Parse failed for "+block.Title, err)
			}
			continue
		}

		showings, normErrs := normalizer.Run(block.Title, segments, receivedAt)
		for _, err := range normErrs {
			p.notifier.ReportError(ctx, "Invalid date in "+block.Title, err)
		}

		for _, showing := range showings {
			summary.Entries++
			p.publishShowing(ctx, logger, src, showing, &summary)
		}
	}

	logger.Info("Newsletter processed",
		"blocks", summary.Blocks,
		"entries", summary.Entries,
		"published", summary.Published,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped)

	return summary, nil
}

func (p *Processor) publishShowing(ctx context.Context, logger *slog.Logger,
	src *source.Config, showing newsletter.Showing, summary *Summary) {
	inserted, err := p.showingRepo.Record(src.Name, showing)
	if err != nil {
		// Fail closed: without a recorded key an announcement could be
		// duplicated on redelivery.
		summary.Skipped++
		p.notifier.ReportError(ctx, "Storage failed for "+showing.Title, err)
		return
	}

	if !inserted {
		summary.Duplicates++
		logger.Debug("Showing already announced", "title", showing.Title, "date", showing.Date.Format("2006-01-02"))
		return
	}

	err = p.publisher.SendMessage(ctx, src.ChannelID, telegram.FormatShowing(showing))
	if err != nil {
		// The dedup key stands; delivery downstream is at-least-once.
		summary.Skipped++
		p.notifier.ReportError(ctx, "Announcement failed for "+showing.Title, err)
		return
	}

	summary.Published++
	logger.Info("Showing announced", "title", showing.Title, "date", showing.Date.Format("2006-01-02"))
}
