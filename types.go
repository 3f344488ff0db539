package videostats

import "time"

// Platform identifies which social network a URL belongs to.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// Stats is the engagement quadruple extracted from a video page.
// Instagram never exposes a public share count, so Shares stays 0 there.
type Stats struct {
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// usable reports whether an extraction result should be trusted. An
// all-zero quadruple is treated as a miss rather than a zero-engagement
// video; the orchestrator then falls back to HTML parsing. Comments alone
// are not evidence — only views or likes count.
func (st Stats) usable() bool {
	return st.Views > 0 || st.Likes > 0
}

// some reports whether at least one field is positive.
func (st Stats) some() bool {
	return st.Views > 0 || st.Likes > 0 || st.Comments > 0 || st.Shares > 0
}

// StatRecord is the sole output unit of a scrape. All four numeric fields
// are always present (zeroed on failure); callers branch on Error, never
// on field absence.
type StatRecord struct {
	URL       string    `json:"url"`
	Platform  Platform  `json:"platform"`
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	ScrapedAt time.Time `json:"scraped_at"`
	Error     string    `json:"error,omitempty"`
}

func (r *StatRecord) setStats(st Stats) {
	r.Views = st.Views
	r.Likes = st.Likes
	r.Comments = st.Comments
	r.Shares = st.Shares
}

// BatchSummary aggregates totals over a batch of records.
type BatchSummary struct {
	TotalViews    int `json:"total_views"`
	TotalLikes    int `json:"total_likes"`
	TotalComments int `json:"total_comments"`
	TotalShares   int `json:"total_shares"`
}

// Summarize totals the engagement fields across records. Failed records
// contribute their zeroes.
func Summarize(records []StatRecord) BatchSummary {
	var sum BatchSummary
	for _, r := range records {
		sum.TotalViews += r.Views
		sum.TotalLikes += r.Likes
		sum.TotalComments += r.Comments
		sum.TotalShares += r.Shares
	}
	return sum
}
