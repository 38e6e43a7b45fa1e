package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/giovanniberti/cartellone/app/database"
	"github.com/giovanniberti/cartellone/app/ingest"
	"github.com/giovanniberti/cartellone/app/source"
)

// ScanSourceTask walks a venue's public newsletter archive feed and
// pushes editions the webhook never delivered through the ingestion
// pipeline. Both paths share the dedup key space, so a showing already
// announced via webhook is a duplicate here and vice versa.
type ScanSourceTask struct {
	Task
	SourceConfig   *source.Config
	httpClient     *http.Client
	processor      *ingest.Processor
	sourceRepo     database.SourceRepository
	newsletterRepo database.NewsletterRepository
	userAgent      string
}

func NewScanSourceTask(sourceName string, sourceConfig *source.Config, httpClient *http.Client,
	processor *ingest.Processor, sourceRepo database.SourceRepository,
	newsletterRepo database.NewsletterRepository, userAgent string) *ScanSourceTask {
	return &ScanSourceTask{
		Task:           NewTask(TaskTypeScanSource, sourceName),
		SourceConfig:   sourceConfig,
		httpClient:     httpClient,
		processor:      processor,
		sourceRepo:     sourceRepo,
		newsletterRepo: newsletterRepo,
		userAgent:      userAgent,
	}
}

func (t *ScanSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.SourceConfig.ArchiveFeed == "" {
		slog.Debug("Source has no archive feed, skipping", "source", t.SourceName)
		return nil
	}

	feedParser := gofeed.NewParser()
	feedParser.UserAgent = t.userAgent

	feed, err := feedParser.ParseURLWithContext(t.SourceConfig.ArchiveFeed, ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch archive feed: %w", err)
	}

	processedCount := 0
	skippedCount := 0

	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		registered, err := t.newsletterRepo.IsRegistered(t.SourceName, item.Link)
		if err != nil {
			return fmt.Errorf("failed to check newsletter registration: %w", err)
		}
		if registered {
			skippedCount++
			continue
		}

		receivedAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			receivedAt = *item.PublishedParsed
		}

		htmlBody, err := t.fetchPage(ctx, item.Link)
		if err != nil {
			slog.Warn("Failed to fetch archived newsletter", "source", t.SourceName, "link", item.Link, "error", err)
			continue
		}

		if _, err := t.processor.Run(ctx, t.SourceConfig, htmlBody, receivedAt); err != nil {
			slog.Warn("Failed to process archived newsletter", "source", t.SourceName, "link", item.Link, "error", err)
			continue
		}

		if _, err := t.newsletterRepo.Register(t.SourceName, item.Link, receivedAt); err != nil {
			slog.Warn("Failed to register archived newsletter", "source", t.SourceName, "link", item.Link, "error", err)
		}

		processedCount++
	}

	if err := t.sourceRepo.UpdateLastScanned(t.SourceName, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last scanned time: %w", err)
	}

	slog.Info("Task completed",
		"type", "ScanSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(feed.Items),
		"processed", processedCount,
		"already_known", skippedCount)

	return nil
}

func (t *ScanSourceTask) fetchPage(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}
