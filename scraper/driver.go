package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"house-finder/models"
	"house-finder/utils"
)

// DefaultMaxPages caps the page count read from page 1 when Options leave
// MaxPages unset.
const DefaultMaxPages = 500

// Options tune how pages after the first are fetched.
type Options struct {
	MaxConcurrency int
	RateLimitMs    int
	MaxAttempts    int
	MaxPages       int
}

// Stats summarises one pagination pass. Repeated counts listings that
// showed up again on a later page than the one they were first seen on.
type Stats struct {
	Pages    int
	Listings int
	Unique   int
	Repeated int
}

// Driver walks every result page of a search and hands the records of each
// page, in page order, to a callback.
type Driver struct {
	fetcher   PageFetcher
	extractor Extractor
	opts      Options
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewDriver creates a Driver.
func NewDriver(fetcher PageFetcher, extractor Extractor, opts Options, logger *utils.Logger) *Driver {
	return &Driver{
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Walk fetches page 1, learns the page count from it, fetches the remaining
// pages and calls fn for every page's records in ascending page order. Any
// fetch or extraction error aborts the walk before fn sees later pages.
func (d *Driver) Walk(ctx context.Context, fn func(page int, listings []models.RawListing)) (Stats, error) {
	var stats Stats

	first, err := d.fetch(ctx, 1)
	if err != nil {
		return stats, err
	}
	lastPage, err := d.extractor.PageCount(first)
	if err != nil {
		return stats, fmt.Errorf("driver: page count: %w", err)
	}
	if lastPage < 1 {
		lastPage = 1
	}
	// a truncated walk would mark every listing past the cap as removed
	if limit := d.maxPages(); lastPage > limit {
		return stats, fmt.Errorf("driver: search reports %d pages, limit is %d: %w", lastPage, limit, ErrTooManyPages)
	}
	d.logger.Info("[driver] Search has %d page(s)", lastPage)

	pages, err := d.fetchRest(ctx, lastPage)
	if err != nil {
		return stats, err
	}
	pages[0] = first

	firstPage := make(map[string]int)
	for i, content := range pages {
		page := i + 1
		listings, err := d.extractor.Listings(content)
		if err != nil {
			return stats, fmt.Errorf("driver: extract page %d: %w", page, err)
		}
		for _, l := range listings {
			if l.ID == "" {
				continue
			}
			seenOn, ok := firstPage[l.ID]
			switch {
			case !ok:
				firstPage[l.ID] = page
			case seenOn != page:
				stats.Repeated++
				d.logger.Info("[driver] Listing %s on page %d was already on page %d, the results shifted while paging", l.ID, page, seenOn)
			default:
				d.logger.Debug("[driver] Listing %s appears twice on page %d", l.ID, page)
			}
		}
		stats.Pages++
		stats.Listings += len(listings)
		d.logger.Debug("[driver] Page %d/%d: %d listings", page, lastPage, len(listings))
		fn(page, listings)
	}
	stats.Unique = len(firstPage)

	return stats, nil
}

// fetchRest retrieves pages 2..lastPage through a rate limited worker pool.
// The returned slice is indexed by page-1; index 0 is left for the caller.
// The first failure cancels the fetches still pending.
func (d *Driver) fetchRest(ctx context.Context, lastPage int) ([][]byte, error) {
	pages := make([][]byte, lastPage)
	if lastPage == 1 {
		return pages, nil
	}

	pool := utils.NewWorkerPool(ctx, d.opts.MaxConcurrency, d.opts.RateLimitMs)
	for page := 2; page <= lastPage; page++ {
		pool.Submit(func(ctx context.Context) error {
			content, err := d.fetch(ctx, page)
			if err != nil {
				return err
			}
			pages[page-1] = content
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		if !errors.Is(err, ErrFetch) {
			err = fmt.Errorf("driver: %w: %w", ErrFetch, err)
		}
		return nil, err
	}
	return pages, nil
}

func (d *Driver) maxPages() int {
	if d.opts.MaxPages > 0 {
		return d.opts.MaxPages
	}
	return DefaultMaxPages
}

func (d *Driver) fetch(ctx context.Context, page int) ([]byte, error) {
	var content []byte
	err := d.retry.Do(ctx, fmt.Sprintf("fetch-page-%d", page), func() error {
		var err error
		content, err = d.fetcher.FetchPage(ctx, page)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("driver: page %d: %w: %w", page, ErrFetch, err)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}
