package videostats

import "encoding/json"

// The structured extractor decodes the retained payload once into the
// platform's envelope and then tries an ordered list of shape matchers,
// each a pure lookup over the envelope. First hit wins. The platforms
// serve several response shapes for the same content depending on entry
// point and rollout state, so every known shape gets a matcher.

type tiktokShape func(*tiktokEnvelope) (Stats, bool)

var tiktokShapes = []tiktokShape{
	func(e *tiktokEnvelope) (Stats, bool) {
		if e.ItemInfo == nil || e.ItemInfo.ItemStruct == nil {
			return Stats{}, false
		}
		return e.ItemInfo.ItemStruct.stats(), true
	},
	func(e *tiktokEnvelope) (Stats, bool) {
		if e.SEOProps == nil || e.SEOProps.WebVideoDetail == nil {
			return Stats{}, false
		}
		return e.SEOProps.WebVideoDetail.stats(), true
	},
	func(e *tiktokEnvelope) (Stats, bool) {
		if len(e.ItemList) == 0 {
			return Stats{}, false
		}
		return e.ItemList[0].stats(), true
	},
}

type instagramShape func(*instagramEnvelope) (Stats, bool)

var instagramShapes = []instagramShape{
	func(e *instagramEnvelope) (Stats, bool) {
		if e.Data == nil || e.Data.ShortcodeMedia == nil {
			return Stats{}, false
		}
		return e.Data.ShortcodeMedia.stats(), true
	},
	func(e *instagramEnvelope) (Stats, bool) {
		if e.Data == nil || e.Data.XDTShortcodeMedia == nil {
			return Stats{}, false
		}
		return e.Data.XDTShortcodeMedia.stats(), true
	},
	func(e *instagramEnvelope) (Stats, bool) {
		if len(e.Items) == 0 {
			return Stats{}, false
		}
		return e.Items[0].stats(), true
	},
}

// extractStats pulls the engagement quadruple out of an intercepted
// payload. ok is false when the payload is absent, undecodable, or
// matches no known shape.
func extractStats(platform Platform, payload []byte) (Stats, bool) {
	if len(payload) == 0 {
		return Stats{}, false
	}

	switch platform {
	case PlatformTikTok:
		var env tiktokEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return Stats{}, false
		}
		for _, shape := range tiktokShapes {
			if st, ok := shape(&env); ok {
				return st, true
			}
		}
	case PlatformInstagram:
		var env instagramEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return Stats{}, false
		}
		for _, shape := range instagramShapes {
			if st, ok := shape(&env); ok {
				return st, true
			}
		}
	}
	return Stats{}, false
}
