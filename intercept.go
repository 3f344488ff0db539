package videostats

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
)

// netResponse is one completed network response observed during a page
// session. Body is lazy: fetching response bodies over CDP is only worth
// doing for the few responses that match an API endpoint.
type netResponse struct {
	url         string
	contentType string
	body        func() ([]byte, error)
}

// interceptor retains the most recent network payload that looks like the
// active platform's video-detail API response. It keeps a single slot —
// later qualifying responses replace earlier ones — and never lets a
// malformed body or a failed body fetch disturb the session.
type interceptor struct {
	profile *platformProfile

	mu       sync.Mutex
	retained []byte
}

func newInterceptor(platform Platform) *interceptor {
	return &interceptor{profile: profiles[platform]}
}

// observe is invoked for every completed response while the listener is
// attached. Non-qualifying or unreadable responses leave the slot as is.
func (ic *interceptor) observe(r netResponse) {
	if !ic.matchesEndpoint(r.url) || !ic.matchesContentType(r.contentType) {
		return
	}

	body, err := r.body()
	if err != nil || !json.Valid(body) {
		return
	}
	if !ic.containsMarkers(body) {
		return
	}

	ic.mu.Lock()
	ic.retained = body
	ic.mu.Unlock()
}

// payload returns the currently retained body, nil if nothing qualified.
func (ic *interceptor) payload() []byte {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.retained
}

func (ic *interceptor) matchesEndpoint(url string) bool {
	for _, ep := range ic.profile.apiEndpoints {
		if strings.Contains(url, ep) {
			return true
		}
	}
	return false
}

func (ic *interceptor) matchesContentType(ct string) bool {
	for _, accepted := range ic.profile.contentTypes {
		if strings.Contains(ct, accepted) {
			return true
		}
	}
	return false
}

// containsMarkers applies the platform's secondary containment check:
// Instagram's matched endpoints also serve unrelated GraphQL traffic, so
// the body must mention at least one known stat field name.
func (ic *interceptor) containsMarkers(body []byte) bool {
	if len(ic.profile.payloadMarkers) == 0 {
		return true
	}
	for _, marker := range ic.profile.payloadMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return true
		}
	}
	return false
}
