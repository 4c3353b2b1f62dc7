package services

import (
	"context"
	"fmt"
	"time"

	"trackrise/internal/cache"
	"trackrise/internal/core"
	"trackrise/internal/ledger"
	"trackrise/internal/log"
)

const (
	dashboardCacheSize = 32
	dashboardCacheTTL  = 5 * time.Minute
)

// Dashboard serves period summaries with a small cache in front of the
// ledger. Every write path calls Invalidate, so the TTL only matters for
// changes made outside this process.
type Dashboard struct {
	store  *ledger.Store
	cache  *cache.LRU[core.Summary]
	logger *log.Logger
}

func NewDashboard(store *ledger.Store, logger *log.Logger) *Dashboard {
	return &Dashboard{
		store:  store,
		cache:  cache.NewLRU[core.Summary](dashboardCacheSize, dashboardCacheTTL),
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// Summary returns income and expense totals for the period.
func (d *Dashboard) Summary(ctx context.Context, from, to time.Time) (core.Summary, error) {
	key := summaryKey(from, to)
	if cached, ok := d.cache.Get(key); ok {
		return cached, nil
	}

	summary, err := d.store.Summary(ctx, from, to)
	if err != nil {
		return core.Summary{}, fmt.Errorf("compute summary: %w", err)
	}

	d.cache.Set(key, summary)
	return summary, nil
}

// Invalidate drops all cached summaries. Called after every ledger write.
func (d *Dashboard) Invalidate() {
	d.cache.Clear()
}

func summaryKey(from, to time.Time) string {
	return fmt.Sprintf("%d:%d", from.UTC().UnixNano(), to.UTC().UnixNano())
}
