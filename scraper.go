package videostats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultNavTimeout = 30 * time.Second
	selectorTimeout   = 2 * time.Second
)

// session is the browser capability the orchestrator drives: navigate,
// listen for responses, query the DOM, read the page, close. The rod
// implementation lives in browser.go; tests substitute a fake.
type session interface {
	// Navigate loads the URL and waits for the network to settle.
	// Returns ErrNavigationTimeout when the settle wait hits its
	// ceiling; that is recoverable, extraction still runs.
	Navigate(url string, timeout time.Duration) error
	// OnResponse registers fn for every completed network response.
	// The returned stop func detaches the listener and is safe to call
	// more than once.
	OnResponse(fn func(netResponse)) (stop func())
	// ElementText returns the visible text of the first element
	// matching the selector, failing after timeout.
	ElementText(selector string, timeout time.Duration) (string, error)
	// HTML returns the current serialized DOM.
	HTML() (string, error)
	// Scroll nudges the viewport to trigger lazy-loaded content.
	Scroll() error
	Close() error
}

// Scraper extracts public engagement stats from TikTok and Instagram
// video pages. Each Scrape call owns a fresh isolated browser session;
// the Scraper itself holds only configuration and is safe to reuse.
type Scraper struct {
	headless          bool
	proxy             string
	navTimeout        time.Duration
	resolveShortLinks bool
	log               zerolog.Logger
	resolver          *linkResolver

	// newSession and sleep are replaceable for testing.
	newSession func(headless bool, proxy string) (session, error)
	sleep      func(time.Duration)
}

// New creates a Scraper with sensible defaults: headless, no proxy, 30s
// navigation ceiling, no logging.
func New() *Scraper {
	return &Scraper{
		headless:   true,
		navTimeout: defaultNavTimeout,
		log:        zerolog.Nop(),
		resolver:   newLinkResolver(),
		newSession: newBrowserSession,
		sleep:      time.Sleep,
	}
}

// WithHeadless toggles headless mode for launched browsers.
func (s *Scraper) WithHeadless(headless bool) *Scraper {
	s.headless = headless
	return s
}

// WithNavTimeout sets the upper bound on navigation + network settle.
func (s *Scraper) WithNavTimeout(d time.Duration) *Scraper {
	if d > 0 {
		s.navTimeout = d
	}
	return s
}

// WithResolveShortLinks enables expanding TikTok short links over plain
// HTTP before the browser navigates.
func (s *Scraper) WithResolveShortLinks(enabled bool) *Scraper {
	s.resolveShortLinks = enabled
	return s
}

// WithLogger attaches a logger. The default discards everything.
func (s *Scraper) WithLogger(log zerolog.Logger) *Scraper {
	s.log = log
	return s
}

// SetProxy configures an HTTP/HTTPS or SOCKS5 proxy for both the browser
// launcher and the short-link resolver.
func (s *Scraper) SetProxy(proxyAddr string) error {
	if err := s.resolver.setProxy(proxyAddr); err != nil {
		return err
	}
	s.proxy = proxyAddr
	return nil
}

// Scrape extracts engagement stats for a single video URL. Failures never
// propagate: they are folded into the record's Error field with a zeroed
// quadruple. An all-zero quadruple without an Error means neither
// extraction path produced data.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (rec StatRecord) {
	start := time.Now()
	rec = StatRecord{
		URL:       rawURL,
		Platform:  DetectPlatform(rawURL),
		ScrapedAt: time.Now(),
	}

	if rec.Platform == PlatformUnknown {
		rec.Error = fmt.Sprintf("unsupported platform: only TikTok and Instagram URLs are accepted (%s)", rawURL)
		s.log.Debug().Err(ErrUnsupportedPlatform).Str("url", rawURL).Msg("skipping url")
		return rec
	}

	target := rawURL
	if s.resolveShortLinks && IsShortLink(rawURL) {
		if resolved, err := s.resolver.Resolve(ctx, rawURL); err == nil {
			target = resolved
			s.log.Debug().Str("url", rawURL).Str("resolved", resolved).Msg("expanded short link")
		}
		// The browser follows redirects itself, so a failed resolution
		// is not fatal.
	}

	sess, err := s.newSession(s.headless, s.proxy)
	if err != nil {
		rec.Error = fmt.Sprintf("open session: %v", err)
		return rec
	}

	// rod surfaces some CDP failures as panics inside event plumbing;
	// anything unexpected past this point becomes the record's error.
	defer func() {
		if p := recover(); p != nil {
			rec.setStats(Stats{})
			rec.Error = fmt.Sprintf("unexpected failure: %v", p)
		}
	}()
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.log.Debug().Err(cerr).Str("url", rawURL).Msg("session teardown")
		}
	}()

	profile := profiles[rec.Platform]
	ic := newInterceptor(rec.Platform)
	detach := sess.OnResponse(ic.observe)
	defer detach()

	s.log.Debug().Str("url", target).Str("platform", string(rec.Platform)).Msg("loading page")

	if navErr := sess.Navigate(target, s.navTimeout); navErr != nil {
		if !errors.Is(navErr, ErrNavigationTimeout) && !errors.Is(navErr, context.DeadlineExceeded) {
			rec.Error = fmt.Sprintf("navigate: %v", navErr)
			return rec
		}
		// Timed out waiting for quiescence: extract whatever was captured.
		s.log.Debug().Str("url", target).Msg("navigation timed out, extracting anyway")
	}

	s.settle(sess, profile)
	detach()

	if st, ok := extractStats(rec.Platform, ic.payload()); ok && st.usable() {
		rec.setStats(st)
		s.log.Debug().Str("url", rawURL).Dur("took", time.Since(start)).
			Int("views", st.Views).Msg("extracted from network response")
		return rec
	}

	st := s.extractFromHTML(sess, rec.Platform)
	rec.setStats(st)
	if st.some() {
		s.log.Debug().Str("url", rawURL).Dur("took", time.Since(start)).
			Int("views", st.Views).Msg("extracted from html fallback")
	} else {
		s.log.Debug().Str("url", rawURL).Dur("took", time.Since(start)).
			Msg("no stats extracted, page may be blocked")
	}
	return rec
}

// settle applies the human-like pause, a scroll, and a short follow-up
// pause so lazy-loaded content (and its API calls) have time to land.
func (s *Scraper) settle(sess session, profile *platformProfile) {
	s.sleep(jitterBetween(profile.settleMin, profile.settleMax))
	if err := sess.Scroll(); err != nil {
		s.log.Debug().Err(err).Msg("scroll")
	}
	s.sleep(jitterBetween(time.Second, 2*time.Second))
}

// ScrapeBatch scrapes urls strictly sequentially, pacing each iteration
// through the limiter. Per-URL failures stay in that URL's record;
// reaching the session ceiling halts the remaining batch.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string, limiter *RateLimiter) []StatRecord {
	records := make([]StatRecord, 0, len(urls))
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !limiter.CanMakeRequest() {
			s.log.Warn().Err(ErrRateLimitExceeded).Int("processed", i).Int("total", len(urls)).
				Msg("stopping batch")
			break
		}
		limiter.Wait()

		s.log.Info().Int("n", i+1).Int("total", len(urls)).
			Int("remaining", limiter.Remaining()).Str("url", u).Msg("processing")
		records = append(records, s.Scrape(ctx, u))
	}
	return records
}
