package printer

import (
	"io"

	"github.com/pkg/browser"
)

// Launcher brings up a browser print surface.
type Launcher interface {
	OpenURL(url string) error
	OpenFile(path string) error
}

// BrowserLauncher opens pages in the operator's default browser.
type BrowserLauncher struct{}

// NewBrowserLauncher silences the browser's own output so it does not mix
// with the service logs.
func NewBrowserLauncher() BrowserLauncher {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return BrowserLauncher{}
}

func (BrowserLauncher) OpenURL(url string) error {
	return browser.OpenURL(url)
}

func (BrowserLauncher) OpenFile(path string) error {
	return browser.OpenFile(path)
}
