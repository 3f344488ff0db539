package videostats

import (
	"regexp"
	"time"
)

// platformProfile is the immutable per-platform matcher configuration:
// URL shapes, API endpoint fragments, fallback selectors and the settle
// delay bounds used to mimic a human pause after navigation.
type platformProfile struct {
	urlPatterns []*regexp.Regexp

	// Substrings matched against response URLs during interception.
	apiEndpoints []string
	// Content types accepted for intercepted payloads.
	contentTypes []string
	// Field-name markers a payload must mention to be retained (empty
	// means any valid JSON from a matching endpoint qualifies).
	payloadMarkers []string

	// Fallback DOM selectors per stat. Comma-separated variants tolerate
	// the platform's UI A/B states.
	selectors map[string]string

	settleMin, settleMax time.Duration
}

var tiktokProfile = platformProfile{
	urlPatterns: []*regexp.Regexp{
		regexp.MustCompile(`tiktok\.com/@[\w.-]+/video/\d+`),
		regexp.MustCompile(`vm\.tiktok\.com/\w+`),
		regexp.MustCompile(`tiktok\.com/t/\w+`),
	},
	apiEndpoints: []string{
		"/api/item/detail",
		"/api/recommend/item_list",
		"webapp/video/detail",
	},
	contentTypes: []string{"application/json"},
	selectors: map[string]string{
		"views":    `[data-e2e="video-views"]`,
		"likes":    `[data-e2e="like-count"], [data-e2e="browse-like-count"]`,
		"comments": `[data-e2e="comment-count"], [data-e2e="browse-comment-count"]`,
		"shares":   `[data-e2e="share-count"]`,
	},
	settleMin: 2 * time.Second,
	settleMax: 4 * time.Second,
}

var instagramProfile = platformProfile{
	urlPatterns: []*regexp.Regexp{
		regexp.MustCompile(`instagram\.com/p/[\w-]+`),
		regexp.MustCompile(`instagram\.com/reels?/[\w-]+`),
		regexp.MustCompile(`instagram\.com/tv/[\w-]+`),
	},
	apiEndpoints: []string{
		"/api/v1/media/",
		"/graphql/query",
		"i.instagram.com/api",
	},
	contentTypes: []string{"application/json", "text/javascript"},
	payloadMarkers: []string{
		"edge_media_preview_like",
		"edge_media_to_comment",
		"like_count",
		"comment_count",
		"play_count",
	},
	settleMin: 3 * time.Second,
	settleMax: 5 * time.Second,
}

var profiles = map[Platform]*platformProfile{
	PlatformTikTok:    &tiktokProfile,
	PlatformInstagram: &instagramProfile,
}

func (p *platformProfile) matchesURL(rawURL string) bool {
	for _, re := range p.urlPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// DetectPlatform classifies a URL as TikTok, Instagram or unknown.
// Pure string matching, no network access. TikTok is checked first; the
// domains are disjoint so order only matters in theory.
func DetectPlatform(rawURL string) Platform {
	if tiktokProfile.matchesURL(rawURL) {
		return PlatformTikTok
	}
	if instagramProfile.matchesURL(rawURL) {
		return PlatformInstagram
	}
	return PlatformUnknown
}
