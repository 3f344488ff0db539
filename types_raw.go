package videostats

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Raw payload structs matching the platforms' JSON exactly. Pointer fields
// mark which response shape is actually present in a given payload.

// TikTok item detail / recommend list responses.

type tiktokEnvelope struct {
	ItemInfo *struct {
		ItemStruct *tiktokItem `json:"itemStruct"`
	} `json:"itemInfo"`
	SEOProps *struct {
		WebVideoDetail *tiktokItem `json:"webVideoDetail"`
	} `json:"seoProps"`
	ItemList []tiktokItem `json:"itemList"`
}

type tiktokItem struct {
	ID    string         `json:"id"`
	Desc  string         `json:"desc"`
	Stats tiktokRawStats `json:"stats"`
}

type tiktokRawStats struct {
	PlayCount    int `json:"playCount"`
	DiggCount    int `json:"diggCount"`
	CommentCount int `json:"commentCount"`
	ShareCount   int `json:"shareCount"`
}

func (it *tiktokItem) stats() Stats {
	return Stats{
		Views:    it.Stats.PlayCount,
		Likes:    it.Stats.DiggCount,
		Comments: it.Stats.CommentCount,
		Shares:   it.Stats.ShareCount,
	}
}

// Instagram GraphQL and direct media responses.

type instagramEnvelope struct {
	Data *struct {
		ShortcodeMedia    *instagramMedia `json:"shortcode_media"`
		XDTShortcodeMedia *instagramMedia `json:"xdt_shortcode_media"`
	} `json:"data"`
	Items []instagramMedia `json:"items"`
}

type instagramMedia struct {
	EdgePreviewLike edgeCount `json:"edge_media_preview_like"`
	EdgeToComment   edgeCount `json:"edge_media_to_comment"`
	VideoViewCount  int       `json:"video_view_count"`
	PlayCount       int       `json:"play_count"`

	// Flat fields used by the non-graph shapes.
	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`
	ViewCount    int `json:"view_count"`
}

type edgeCount struct {
	Count int `json:"count"`
}

// stats merges the graph-edge counts with the flat fields, the flat field
// filling in whenever the edge came back zero. Shares is structurally 0.
func (m *instagramMedia) stats() Stats {
	likes := m.EdgePreviewLike.Count
	comments := m.EdgeToComment.Count
	views := m.VideoViewCount
	if views == 0 {
		views = m.PlayCount
	}

	if likes == 0 {
		likes = m.LikeCount
	}
	if comments == 0 {
		comments = m.CommentCount
	}
	if views == 0 {
		views = m.ViewCount
	}

	return Stats{Views: views, Likes: likes, Comments: comments}
}

// schema.org VideoObject embedded in ld+json script tags, used by the
// Instagram HTML fallback.

type ldJSONDocument struct {
	InteractionStatistic []ldInteraction `json:"interactionStatistic"`
}

type ldInteraction struct {
	InteractionType      ldInteractionType `json:"interactionType"`
	UserInteractionCount jsonNumber        `json:"userInteractionCount"`
}

// ldInteractionType accepts both the plain-string form
// ("http://schema.org/LikeAction") and the object form ({"@type": "LikeAction"}).
type ldInteractionType string

func (t *ldInteractionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ldInteractionType(s)
		return nil
	}
	var obj struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*t = ldInteractionType(obj.Type)
		return nil
	}
	// Unrecognized shapes map to the empty type rather than failing the
	// whole document.
	*t = ""
	return nil
}

func (t ldInteractionType) contains(word string) bool {
	return strings.Contains(string(t), word)
}

// jsonNumber accepts numeric counts serialized either as JSON numbers or
// as quoted strings, both of which appear in the wild.
type jsonNumber int

func (n *jsonNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = jsonNumber(f)
	return nil
}
