package videostats

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTML fallback extraction, used when no usable network payload was
// captured. Everything here is best effort: each field is attempted
// independently and defaults to 0.

func (s *Scraper) extractFromHTML(sess session, platform Platform) Stats {
	switch platform {
	case PlatformTikTok:
		return s.tiktokFromDOM(sess)
	case PlatformInstagram:
		return s.instagramFromHTML(sess)
	}
	return Stats{}
}

// tiktokFromDOM reads the stat counters straight off the rendered page.
// A missing selector for one stat must not abort the others.
func (s *Scraper) tiktokFromDOM(sess session) Stats {
	var st Stats
	fields := []struct {
		name string
		dst  *int
	}{
		{"views", &st.Views},
		{"likes", &st.Likes},
		{"comments", &st.Comments},
		{"shares", &st.Shares},
	}
	for _, f := range fields {
		text, err := sess.ElementText(tiktokProfile.selectors[f.name], selectorTimeout)
		if err != nil {
			s.log.Debug().Err(err).Str("stat", f.name).Msg("selector miss")
			continue
		}
		*f.dst = ParseCount(text)
	}
	return st
}

// instagramFromHTML parses the serialized page once with goquery and runs
// two strategies in sequence: the social-preview meta description, then
// embedded ld+json structured data. Later strategies only fill fields the
// earlier ones left at zero.
func (s *Scraper) instagramFromHTML(sess session) Stats {
	html, err := sess.HTML()
	if err != nil {
		s.log.Debug().Err(err).Msg("read page html")
		return Stats{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.log.Debug().Err(err).Msg("parse page html")
		return Stats{}
	}

	st := statsFromMetaDescription(doc)
	fillZero(&st, statsFromLDJSON(doc))
	return st
}

var (
	reLikes    = regexp.MustCompile(`(?i)([\d,KMB.]+)\s*likes?`)
	reComments = regexp.MustCompile(`(?i)([\d,KMB.]+)\s*comments?`)
	reViews    = regexp.MustCompile(`(?i)([\d,KMB.]+)\s*views?`)
)

// statsFromMetaDescription pulls "<n> likes, <n> comments" style counts
// out of the og:description preview text.
func statsFromMetaDescription(doc *goquery.Document) Stats {
	var st Stats
	content, ok := doc.Find(`meta[property="og:description"]`).Attr("content")
	if !ok {
		return st
	}
	if m := reLikes.FindStringSubmatch(content); m != nil {
		st.Likes = ParseCount(m[1])
	}
	if m := reComments.FindStringSubmatch(content); m != nil {
		st.Comments = ParseCount(m[1])
	}
	if m := reViews.FindStringSubmatch(content); m != nil {
		st.Views = ParseCount(m[1])
	}
	return st
}

// statsFromLDJSON walks the embedded application/ld+json blocks and maps
// interactionStatistic entries onto the quadruple. Counts here are
// already numeric. Malformed blocks are skipped.
func statsFromLDJSON(doc *goquery.Document) Stats {
	var st Stats
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var d ldJSONDocument
		if err := json.Unmarshal([]byte(sel.Text()), &d); err != nil {
			return
		}
		for _, it := range d.InteractionStatistic {
			switch {
			case it.InteractionType.contains("Like"):
				st.Likes = int(it.UserInteractionCount)
			case it.InteractionType.contains("Comment"):
				st.Comments = int(it.UserInteractionCount)
			case it.InteractionType.contains("Watch"):
				st.Views = int(it.UserInteractionCount)
			}
		}
	})
	return st
}

// fillZero copies src fields into dst slots that are still zero.
func fillZero(dst *Stats, src Stats) {
	if dst.Views == 0 {
		dst.Views = src.Views
	}
	if dst.Likes == 0 {
		dst.Likes = src.Likes
	}
	if dst.Comments == 0 {
		dst.Comments = src.Comments
	}
	if dst.Shares == 0 {
		dst.Shares = src.Shares
	}
}
