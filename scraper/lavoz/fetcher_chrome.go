package lavoz

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"house-finder/utils"
)

// ChromeFetcher retrieves result pages through a headless browser, for when
// the catalog refuses plain HTTP clients. One browser is shared by every
// fetch; each page gets its own tab.
type ChromeFetcher struct {
	baseURL string
	timeout time.Duration
	logger  *utils.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewChromeFetcher starts a headless browser. chromeBin may be empty to
// search the usual install locations.
func NewChromeFetcher(baseURL, chromeBin, userAgent string, timeout time.Duration, logger *utils.Logger) (*ChromeFetcher, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[chrome] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// The first Run launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("chrome: start browser: %w", err)
	}

	return &ChromeFetcher{
		baseURL:       baseURL,
		timeout:       timeout,
		logger:        logger,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}, nil
}

// FetchPage renders result page n and returns its HTML.
func (f *ChromeFetcher) FetchPage(ctx context.Context, n int) ([]byte, error) {
	f.mu.Lock()
	browserCtx := f.browserCtx
	f.mu.Unlock()
	if browserCtx == nil {
		return nil, fmt.Errorf("chrome: fetcher is closed")
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	if f.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, f.timeout)
		defer cancelTimeout()
	}

	// The tab lives under the browser context; tie it to the caller too.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	target := PageURL(f.baseURL, n)
	f.logger.Debug("[chrome] Navigating to %s", target)

	var content string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("chrome: load %s: %w", target, context.Cause(ctx))
		}
		return nil, fmt.Errorf("chrome: load %s: %w", target, err)
	}
	return []byte(content), nil
}

// Close shuts the browser down.
func (f *ChromeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browserCtx == nil {
		return nil
	}
	f.cancelBrowser()
	f.cancelAlloc()
	f.browserCtx = nil
	return nil
}

// findChromeBinary looks for a Chrome or Chromium install on PATH and in
// common locations.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
