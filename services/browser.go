package services

import (
	"io"

	"github.com/pkg/browser"
)

// BrowserOpener opens links with the system browser. The platform launchers
// do not tell windows from tabs, so both end up in OpenURL.
type BrowserOpener struct{}

// NewBrowserOpener returns an opener whose launcher output goes to w.
func NewBrowserOpener(w io.Writer) BrowserOpener {
	browser.Stdout = w
	browser.Stderr = w
	return BrowserOpener{}
}

func (BrowserOpener) OpenWindow(url string) error { return browser.OpenURL(url) }

func (BrowserOpener) OpenTab(url string) error { return browser.OpenURL(url) }
