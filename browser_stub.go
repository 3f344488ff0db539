//go:build unittest

package videostats

// Unit-test builds never launch a real browser; tests inject fake
// sessions through the Scraper's newSession field.
func newBrowserSession(headless bool, proxyAddr string) (session, error) {
	return nil, ErrBrowserNotReady
}
