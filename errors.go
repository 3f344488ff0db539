package videostats

import "errors"

var (
	ErrUnsupportedPlatform = errors.New("videostats: unsupported platform")
	ErrNavigationTimeout   = errors.New("videostats: navigation timed out")
	ErrBrowserNotReady     = errors.New("videostats: browser not available")
	ErrRateLimitExceeded   = errors.New("videostats: session request limit reached")
	ErrNotShortLink        = errors.New("videostats: not a short link")
)
