package videostats

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/net/proxy"
)

// Common desktop user agents, one picked per session.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

func randomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

var shortLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`vm\.tiktok\.com/\w+`),
	regexp.MustCompile(`tiktok\.com/t/\w+`),
}

// IsShortLink reports whether the URL is a TikTok redirect link that can
// be expanded to a canonical video URL without a browser.
func IsShortLink(rawURL string) bool {
	for _, re := range shortLinkPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// linkResolver expands short links over plain HTTP. It shares the
// Scraper's proxy configuration so resolution traffic exits the same way
// browser traffic does.
type linkResolver struct {
	client    *http.Client
	userAgent string
}

// defaultTransport returns an http.Transport tuned for scraping:
// connection pooling, keep-alive, and TLS handshake caching.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

func newLinkResolver() *linkResolver {
	return &linkResolver{
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: defaultTransport(),
		},
		userAgent: randomUserAgent(),
	}
}

// setProxy configures an HTTP/HTTPS or SOCKS5 proxy. An empty address
// resets to a direct transport.
func (lr *linkResolver) setProxy(proxyAddr string) error {
	if proxyAddr == "" {
		lr.client.Transport = defaultTransport()
		return nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}

	base := defaultTransport()

	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
		lr.client.Transport = base
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
		lr.client.Transport = base
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}

	return nil
}

// Resolve follows the short link's redirect chain and returns the final
// URL. Returns ErrNotShortLink for URLs that don't need expansion.
func (lr *linkResolver) Resolve(ctx context.Context, shortURL string) (string, error) {
	if !IsShortLink(shortURL) {
		return "", ErrNotShortLink
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", lr.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := lr.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve short link: %w", err)
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}
