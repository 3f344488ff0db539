//go:build !unittest

package videostats

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// browserSession is the rod-backed session implementation. Every scrape
// gets its own browser process and stealth page; nothing is reused across
// URLs, which keeps fingerprints uncorrelated.
type browserSession struct {
	browser *rod.Browser
	page    *rod.Page

	closeOnce sync.Once
	closeErr  error
}

func newBrowserSession(headless bool, proxyAddr string) (session, error) {
	l := launcher.New().Headless(headless)
	if proxyAddr != "" {
		l = l.Proxy(proxyAddr)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("create stealth page: %w", err)
	}

	_ = proto.NetworkSetUserAgentOverride{UserAgent: randomUserAgent()}.Call(page)
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	})

	bs := &browserSession{browser: browser, page: page}
	bs.blockHeavyResources()
	return bs, nil
}

// blockHeavyResources drops media, fonts and analytics beacons to cut page
// weight. CSS stays: the stat counters only render with layout intact.
func (bs *browserSession) blockHeavyResources() {
	router := bs.browser.HijackRequests()
	blocked := []string{"*.png", "*.jpg", "*.jpeg", "*.mp4", "*.woff*", "*.svg", "*analytics*"}
	for _, pattern := range blocked {
		router.MustAdd(pattern, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
}

func (bs *browserSession) Navigate(url string, timeout time.Duration) error {
	page := bs.page.Timeout(timeout)
	if err := page.Navigate(url); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrNavigationTimeout
		}
		return fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitStable(1500 * time.Millisecond); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrNavigationTimeout
		}
		return fmt.Errorf("wait for page: %w", err)
	}
	return nil
}

// OnResponse streams completed responses to fn until stop is called.
// Bodies are fetched lazily over CDP only when the observer asks.
func (bs *browserSession) OnResponse(fn func(netResponse)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	page := bs.page.Context(ctx)

	// Subscribe before returning so responses fired during navigation are
	// not missed; only the blocking wait runs in the background.
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) {
		fn(netResponse{
			url:         e.Response.URL,
			contentType: e.Response.MIMEType,
			body: func() ([]byte, error) {
				res, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(page)
				if err != nil {
					return nil, fmt.Errorf("fetch response body: %w", err)
				}
				if res.Base64Encoded {
					return base64.StdEncoding.DecodeString(res.Body)
				}
				return []byte(res.Body), nil
			},
		})
	})
	go wait()

	var once sync.Once
	return func() { once.Do(cancel) }
}

func (bs *browserSession) ElementText(selector string, timeout time.Duration) (string, error) {
	el, err := bs.page.Timeout(timeout).Element(selector)
	if err != nil {
		return "", fmt.Errorf("find %q: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read %q: %w", selector, err)
	}
	return text, nil
}

func (bs *browserSession) HTML() (string, error) {
	return bs.page.HTML()
}

func (bs *browserSession) Scroll() error {
	_, err := bs.page.Timeout(5 * time.Second).Eval(`() => window.scrollBy(0, window.innerHeight / 2)`)
	return err
}

// Close tears down the page and browser. Idempotent: the orchestrator
// guarantees teardown on every exit path and must not double-close.
func (bs *browserSession) Close() error {
	bs.closeOnce.Do(func() {
		if err := bs.page.Close(); err != nil {
			bs.closeErr = fmt.Errorf("close page: %w", err)
		}
		if err := bs.browser.Close(); err != nil && bs.closeErr == nil {
			bs.closeErr = fmt.Errorf("close browser: %w", err)
		}
	})
	return bs.closeErr
}
