package scraper

import (
	"context"
	"errors"

	"house-finder/models"
)

// ErrFetch marks a transport failure while retrieving a catalog page. It
// aborts the run.
var ErrFetch = errors.New("fetch failed")

// ErrTooManyPages marks a search whose first page reports more pages than
// the driver is allowed to fetch.
var ErrTooManyPages = errors.New("page count above limit")

// PageFetcher retrieves the raw content of one result page. Pages are
// numbered from 1.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) ([]byte, error)
	Close() error
}

// Extractor reads a result page. Records it cannot identify are returned
// with an empty ID or omitted.
type Extractor interface {
	PageCount(content []byte) (int, error)
	Listings(content []byte) ([]models.RawListing, error)
}
