package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ferretcode/lovebug/internal/cache"
	"github.com/ferretcode/lovebug/internal/store"
	"github.com/ferretcode/lovebug/internal/types"
)

type Crawler interface {
	Crawl(ctx context.Context) ([]types.Report, error)
}

type ReportWriter interface {
	UpsertReports(ctx context.Context, reports []types.Report) (store.UpsertResult, error)
}

type Broadcaster interface {
	Broadcast(update types.RealTimeUpdate) int
}

type Workflow struct {
	crawler Crawler
	store   ReportWriter
	cache   cache.Cache
	hub     Broadcaster
	logger  *slog.Logger
	now     func() time.Time
}

func New(crawler Crawler, reports ReportWriter, responses cache.Cache, hub Broadcaster, logger *slog.Logger) *Workflow {
	return &Workflow{
		crawler: crawler,
		store:   reports,
		cache:   responses,
		hub:     hub,
		logger:  logger,
		now:     time.Now,
	}
}

// CrawlAndUpdate crawls once, stores the reports, drops cached responses and
// pushes the reports to websocket clients. It returns the number of reports
// crawled.
func (w *Workflow) CrawlAndUpdate(ctx context.Context) (int, error) {
	w.logger.Info("crawl started")

	reports, err := w.crawler.Crawl(ctx)
	if err != nil {
		return 0, fmt.Errorf("error crawling: %w", err)
	}

	if len(reports) == 0 {
		w.logger.Info("crawl found no reports")
		return 0, nil
	}

	res, err := w.store.UpsertReports(ctx, reports)
	if err != nil {
		return 0, fmt.Errorf("error storing reports: %w", err)
	}

	w.logger.Info("reports updated", "reports", len(reports), "upserted", res.Upserted, "modified", res.Modified)

	if err := w.cache.Invalidate(ctx); err != nil {
		w.logger.Warn("error invalidating cache", "err", err)
	}

	delivered := w.hub.Broadcast(types.RealTimeUpdate{
		Type:      types.UpdateTypeLovebug,
		Data:      reports,
		Timestamp: w.now().UTC(),
	})
	w.logger.Debug("broadcast reports", "clients", delivered)

	return len(reports), nil
}
