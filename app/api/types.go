package api

import (
	"net/http"

	"github.com/giovanniberti/cartellone/app/database"
	"github.com/giovanniberti/cartellone/app/ingest"
	"github.com/giovanniberti/cartellone/app/mailgun"
	"github.com/giovanniberti/cartellone/app/source"
	"github.com/giovanniberti/cartellone/app/tasks"
)

type Handler struct {
	configCache    *source.ConfigCache
	sourceRepo     database.SourceRepository
	newsletterRepo database.NewsletterRepository
	showingRepo    database.ShowingRepository
	verifier       *mailgun.Verifier
	processor      *ingest.Processor
	scheduler      tasks.TaskSchedulerInterface
	httpClient     *http.Client
	userAgent      string
}
