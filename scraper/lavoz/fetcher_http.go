package lavoz

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"house-finder/utils"
)

// HTTPFetcher retrieves result pages with plain HTTP requests.
type HTTPFetcher struct {
	// parent collector; every fetch works on a clone sharing its transport
	collector *colly.Collector
	baseURL   string
	logger    *utils.Logger
}

// NewHTTPFetcher creates a fetcher for the search whose first page is
// baseURL. An empty userAgent picks a real browser agent per request.
func NewHTTPFetcher(baseURL, userAgent string, timeout time.Duration, logger *utils.Logger) *HTTPFetcher {
	c := colly.NewCollector(colly.AllowURLRevisit(), colly.UserAgent(userAgent))
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	return &HTTPFetcher{
		collector: c,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// FetchPage returns the body of result page n. Non-2xx answers are errors.
func (f *HTTPFetcher) FetchPage(ctx context.Context, n int) ([]byte, error) {
	// Clones share the transport but not the callbacks.
	collector := f.collector.Clone()
	collector.Context = ctx
	if collector.UserAgent == "" {
		extensions.RandomUserAgent(collector)
	}

	var body []byte
	var responseErr error
	target := PageURL(f.baseURL, n)

	collector.OnRequest(func(r *colly.Request) {
		f.logger.Debug("[http] GET %s", r.URL)
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = fmt.Errorf("http: request to %s failed with status %d: %w", target, r.StatusCode, err)
	})

	if err := collector.Visit(target); err != nil && responseErr == nil {
		return nil, fmt.Errorf("http: visit %s: %w", target, err)
	}
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}
	return body, nil
}

func (f *HTTPFetcher) Close() error { return nil }
