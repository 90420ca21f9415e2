package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"house-finder/models"
	"house-finder/scraper"
	"house-finder/utils"
)

// Walker streams the records of every result page in page order.
type Walker interface {
	Walk(ctx context.Context, fn func(page int, listings []models.RawListing)) (scraper.Stats, error)
}

// RunResult is the outcome of one completed discovery run.
type RunResult struct {
	ID       string
	Snapshot *models.Snapshot
	Inserted []models.Listing
	Removed  []models.Removal
	Stats    scraper.Stats
}

// Tracker runs discovery for one search: it taints the prior snapshot, feeds
// every discovered record to the Reconciler and sweeps what was not seen.
type Tracker struct {
	walker     Walker
	reconciler *Reconciler
	cleaner    *Cleaner
	logger     *utils.Logger
}

// NewTracker creates a Tracker.
func NewTracker(walker Walker, reconciler *Reconciler, cleaner *Cleaner, logger *utils.Logger) *Tracker {
	return &Tracker{
		walker:     walker,
		reconciler: reconciler,
		cleaner:    cleaner,
		logger:     logger,
	}
}

// Discover performs a full run against prior. prior itself is never
// modified: on error the caller still holds the pre-run snapshot and nothing
// must be persisted.
func (t *Tracker) Discover(ctx context.Context, prior *models.Snapshot) (*RunResult, error) {
	result := &RunResult{ID: uuid.NewString()}
	logger := t.logger.With("run", result.ID)
	start := time.Now()

	run := t.reconciler.BeginRun(prior)
	logger.Info("[tracker] Run started with %d known listings", prior.Len())

	stats, err := t.walker.Walk(ctx, func(page int, listings []models.RawListing) {
		for _, raw := range t.cleaner.Clean(listings) {
			switch t.reconciler.Observe(run, raw) {
			case OutcomeInserted:
				l, _ := run.Get(raw.ID)
				result.Inserted = append(result.Inserted, l)
				logger.Debug("[tracker] New listing %s on page %d", raw.ID, page)
			case OutcomeDiscarded:
				logger.Debug("[tracker] Listing %s is discarded, ignoring", raw.ID)
			}
		}
	})
	if err != nil {
		logger.Error("[tracker] Run aborted after %v: %v", time.Since(start).Round(time.Millisecond), err)
		return nil, fmt.Errorf("tracker: discovery: %w", err)
	}

	// Listings already removed before the run are swept again; only report
	// the ones that left the catalog since the last run.
	for _, r := range t.reconciler.EndRun(run) {
		if l, ok := prior.Get(r.ID); ok && l.Status == models.StatusRemoved {
			continue
		}
		result.Removed = append(result.Removed, r)
	}
	result.Snapshot = run
	result.Stats = stats

	for _, r := range result.Removed {
		logger.Info("[tracker] Listing %s is no longer listed", r.ID)
	}
	logger.Info("[tracker] Run finished in %v: %d pages, %d listings, %d new, %d removed",
		time.Since(start).Round(time.Millisecond), stats.Pages, stats.Unique, len(result.Inserted), len(result.Removed))

	return result, nil
}
