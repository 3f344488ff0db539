package videostats

import (
	"context"
	"testing"
)

func instagramPage(meta, ldjson string) string {
	page := `<html><head>`
	if meta != "" {
		page += `<meta property="og:description" content="` + meta + `"/>`
	}
	if ldjson != "" {
		page += `<script type="application/ld+json">` + ldjson + `</script>`
	}
	return page + `</head><body></body></html>`
}

func scrapeInstagramHTML(t *testing.T, html string) StatRecord {
	t.Helper()
	sess := &fakeSession{html: html}
	s := newTestScraper(sess)
	return s.Scrape(context.Background(), "https://www.instagram.com/reel/Cxyz123/")
}

func TestInstagramFallback_MetaDescription(t *testing.T) {
	t.Parallel()
	rec := scrapeInstagramHTML(t, instagramPage("1.2K likes, 45 comments - user on January 1, 2026", ""))

	if rec.Likes != 1200 {
		t.Errorf("expected 1200 likes, got %d", rec.Likes)
	}
	if rec.Comments != 45 {
		t.Errorf("expected 45 comments, got %d", rec.Comments)
	}
	if rec.Views != 0 {
		t.Errorf("expected no views in meta, got %d", rec.Views)
	}
	if rec.Shares != 0 {
		t.Errorf("instagram shares must stay 0, got %d", rec.Shares)
	}
}

func TestInstagramFallback_MetaWithViews(t *testing.T) {
	t.Parallel()
	rec := scrapeInstagramHTML(t, instagramPage("2.5M views, 890K likes, 1,234 comments", ""))

	if rec.Views != 2500000 || rec.Likes != 890000 || rec.Comments != 1234 {
		t.Errorf("unexpected stats: %+v", rec)
	}
}

func TestInstagramFallback_LDJSON(t *testing.T) {
	t.Parallel()
	ld := `{"@type":"VideoObject","interactionStatistic":[
		{"interactionType":"http://schema.org/LikeAction","userInteractionCount":500},
		{"interactionType":{"@type":"CommentAction"},"userInteractionCount":"20"},
		{"interactionType":"http://schema.org/WatchAction","userInteractionCount":9000}
	]}`
	rec := scrapeInstagramHTML(t, instagramPage("", ld))

	if rec.Likes != 500 || rec.Comments != 20 || rec.Views != 9000 {
		t.Errorf("unexpected stats: %+v", rec)
	}
}

func TestInstagramFallback_LDJSONOnlyFillsZeroFields(t *testing.T) {
	t.Parallel()
	// Meta supplies likes; ld+json must not overwrite it, only fill the
	// still-zero views.
	ld := `{"interactionStatistic":[
		{"interactionType":"http://schema.org/LikeAction","userInteractionCount":1},
		{"interactionType":"http://schema.org/WatchAction","userInteractionCount":7000}
	]}`
	rec := scrapeInstagramHTML(t, instagramPage("300 likes", ld))

	if rec.Likes != 300 {
		t.Errorf("meta likes must win, got %d", rec.Likes)
	}
	if rec.Views != 7000 {
		t.Errorf("expected ld+json views to fill in, got %d", rec.Views)
	}
}

func TestInstagramFallback_MalformedLDJSONSkipped(t *testing.T) {
	t.Parallel()
	html := `<html><head>` +
		`<script type="application/ld+json">{broken</script>` +
		`<script type="application/ld+json">{"interactionStatistic":[{"interactionType":"LikeAction","userInteractionCount":42}]}</script>` +
		`</head><body></body></html>`
	rec := scrapeInstagramHTML(t, html)

	if rec.Likes != 42 {
		t.Errorf("expected the valid block to be used, got %+v", rec)
	}
}

func TestInstagramFallback_EmptyPage(t *testing.T) {
	t.Parallel()
	rec := scrapeInstagramHTML(t, "<html><head></head><body></body></html>")

	if rec.Views != 0 || rec.Likes != 0 || rec.Comments != 0 || rec.Shares != 0 {
		t.Errorf("expected all-zero stats, got %+v", rec)
	}
	if rec.Error != "" {
		t.Errorf("missing data is not an error, got %q", rec.Error)
	}
}

func TestTikTokFallback_AllSelectors(t *testing.T) {
	t.Parallel()
	sess := &fakeSession{selectorText: map[string]string{
		tiktokProfile.selectors["views"]:    "1.5M",
		tiktokProfile.selectors["likes"]:    "234K",
		tiktokProfile.selectors["comments"]: "1,234",
		tiktokProfile.selectors["shares"]:   "56",
	}}
	s := newTestScraper(sess)

	rec := s.Scrape(context.Background(), tiktokVideoURL)

	if rec.Views != 1500000 || rec.Likes != 234000 || rec.Comments != 1234 || rec.Shares != 56 {
		t.Errorf("unexpected stats: %+v", rec)
	}
}
