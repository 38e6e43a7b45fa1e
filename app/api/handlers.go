package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giovanniberti/cartellone/app/database"
	"github.com/giovanniberti/cartellone/app/ingest"
	"github.com/giovanniberti/cartellone/app/mailgun"
	"github.com/giovanniberti/cartellone/app/source"
	"github.com/giovanniberti/cartellone/app/tasks"
)

func NewHandler(configCache *source.ConfigCache, sourceRepo database.SourceRepository,
	newsletterRepo database.NewsletterRepository, showingRepo database.ShowingRepository,
	verifier *mailgun.Verifier, processor *ingest.Processor,
	scheduler tasks.TaskSchedulerInterface, httpClient *http.Client, userAgent string) *Handler {
	return &Handler{
		configCache:    configCache,
		sourceRepo:     sourceRepo,
		newsletterRepo: newsletterRepo,
		showingRepo:    showingRepo,
		verifier:       verifier,
		processor:      processor,
		scheduler:      scheduler,
		httpClient:     httpClient,
		userAgent:      userAgent,
	}
}

// PostMailgunWebhook receives a forwarded newsletter email. The order
// is fixed: resolve the source, decode the payload, verify the
// signature, check the sender, and only then run the pipeline. Nothing
// is processed and no dedup state is written before authentication
// passes.
func (h *Handler) PostMailgunWebhook(c *gin.Context) {
	name := c.Param("name")

	src, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Warn("Webhook for unknown source", "source", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown source"})
		return
	}

	payload, err := mailgun.PayloadFromRequest(c.Request)
	if err != nil {
		slog.Warn("Malformed webhook payload", "source", name, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed payload", "details": err.Error()})
		return
	}

	if err := h.verifier.Verify(c.Request.Context(), payload.Signature); err != nil {
		slog.Warn("Webhook authentication failed", "source", name, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	if !src.AllowsSender(payload.From) {
		slog.Warn("Webhook from unexpected sender", "source", name, "from", payload.From)
		c.JSON(http.StatusNotAcceptable, gin.H{"error": "Sender not allowed"})
		return
	}

	receivedAt := time.Now().UTC()
	if ts, err := strconv.ParseInt(payload.Signature.Timestamp, 10, 64); err == nil {
		receivedAt = time.Unix(ts, 0).UTC()
	}

	summary, err := h.processor.Run(c.Request.Context(), src, payload.BodyHTML, receivedAt)
	if err != nil {
		slog.Error("Webhook processing failed", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database unavailable"})
		return
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	stats := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		entry := map[string]interface{}{
			"source":  config.Name,
			"enabled": config.Settings.Enabled,
		}

		if count, err := h.newsletterRepo.GetNewsletterCount(config.Name); err == nil {
			entry["newsletters"] = count
		}
		if count, err := h.showingRepo.GetShowingCount(config.Name); err == nil {
			entry["showings"] = count
		}

		stats = append(stats, entry)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": stats,
		"total":   len(stats),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, config := range configs {
		info := map[string]interface{}{
			"name":          config.Name,
			"channel_id":    config.ChannelID,
			"enabled":       config.Settings.Enabled,
			"timezone":      config.Timezone,
			"archive_feed":  config.ArchiveFeed,
			"scan_interval": (time.Duration(config.Settings.ScanInterval) * time.Second).String(),
		}

		if src, err := h.sourceRepo.GetSource(config.Name); err == nil && src != nil {
			info["last_scanned_at"] = src.LastScannedAt
			info["updated_at"] = src.UpdatedAt
		}

		sources = append(sources, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIGetSourceDetails(c *gin.Context) {
	name := c.Param("name")

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	src, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if src == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":          name,
		"channel_id":    config.ChannelID,
		"enabled":       config.Settings.Enabled,
		"timezone":      config.Timezone,
		"archive_feed":  config.ArchiveFeed,
		"senders":       config.Senders,
		"scan_interval": (time.Duration(config.Settings.ScanInterval) * time.Second).String(),
	}

	details["database"] = map[string]interface{}{
		"id":              src.ID,
		"last_scanned_at": src.LastScannedAt,
		"created_at":      src.CreatedAt,
		"updated_at":      src.UpdatedAt,
	}

	if count, err := h.newsletterRepo.GetNewsletterCount(name); err == nil {
		details["newsletters"] = count
	}

	if recent, err := h.showingRepo.GetRecentShowings(name, 20); err == nil {
		showings := make([]map[string]interface{}, 0, len(recent))
		for _, rec := range recent {
			showings = append(showings, map[string]interface{}{
				"title":        rec.Title,
				"show_date":    rec.ShowDate.Format("2006-01-02"),
				"showtimes":    rec.Showtimes,
				"details":      rec.Details,
				"announced_at": rec.AnnouncedAt,
			})
		}
		details["recent_showings"] = showings
	}

	c.JSON(http.StatusOK, details)
}

// APIScanSource enqueues an immediate archive scan, the on-demand form
// of the scheduled re-run path.
func (h *Handler) APIScanSource(c *gin.Context) {
	name := c.Param("name")

	config, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	if config.ArchiveFeed == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Source has no archive feed configured"})
		return
	}

	scanTask := tasks.NewScanSourceTask(name, config, h.httpClient, h.processor, h.sourceRepo, h.newsletterRepo, h.userAgent)
	if err := h.scheduler.EnqueueTask(scanTask); err != nil {
		slog.Error("Error enqueueing scan task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue scan task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Archive scan enqueued",
		"task": gin.H{
			"id":   scanTask.ID,
			"type": scanTask.Type,
		},
	})
}
