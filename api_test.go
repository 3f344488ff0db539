package videostats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newTestServer builds a Server whose scrapers use fake sessions fed by
// sessionFor and never sleep.
func newTestServer(sessionFor func(url string) session) *Server {
	cfg := DefaultConfig()
	cfg.RateLimit.MinDelay = 0
	cfg.RateLimit.MaxDelay = 0

	srv := NewServer(cfg, zerolog.Nop())
	srv.newScraper = func(headless bool) (*Scraper, error) {
		s := New().WithHeadless(headless)
		s.sleep = func(time.Duration) {}
		s.newSession = func(headless bool, proxy string) (session, error) {
			return sessionFor(""), nil
		}
		return s, nil
	}
	return srv
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestAPI_Health(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session { return &fakeSession{} })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestAPI_ScrapeMissingURL(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session { return &fakeSession{} })

	for _, body := range []string{`{}`, `{"url":""}`, `not json`} {
		w := postJSON(t, srv.Handler(), "/scrape", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestAPI_ScrapeSuccess(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session {
		return &fakeSession{responses: []netResponse{tiktokDetailResponse(
			`{"itemInfo":{"itemStruct":{"stats":{"playCount":12500,"diggCount":890,"commentCount":45,"shareCount":12}}}}`,
		)}}
	})

	w := postJSON(t, srv.Handler(), "/scrape", fmt.Sprintf(`{"url":%q}`, tiktokVideoURL))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Success bool       `json:"success"`
		Data    StatRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Data.Views != 12500 || resp.Data.Likes != 890 {
		t.Errorf("unexpected record: %+v", resp.Data)
	}
}

func TestAPI_ScrapeUnsupportedPlatform(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session { return &fakeSession{} })

	w := postJSON(t, srv.Handler(), "/scrape", `{"url":"https://example.com/video"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with error envelope, got %d", w.Code)
	}
	var resp struct {
		Success bool       `json:"success"`
		Error   string     `json:"error"`
		Data    StatRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if !strings.Contains(resp.Error, "unsupported platform") {
		t.Errorf("expected unsupported platform error, got %q", resp.Error)
	}
	// The record still carries the zeroed quadruple.
	if resp.Data.Views != 0 || resp.Data.Likes != 0 {
		t.Errorf("expected zeroed quadruple, got %+v", resp.Data)
	}
}

func TestAPI_BatchTruncatesToTen(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session { return &fakeSession{} })

	urls := make([]string, 15)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://www.tiktok.com/@user/video/%d", 1000+i)
	}
	body, _ := json.Marshal(map[string]any{"urls": urls})

	w := postJSON(t, srv.Handler(), "/scrape/batch", string(body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Success bool         `json:"success"`
		Data    []StatRecord `json:"data"`
		Summary BatchSummary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 10 {
		t.Errorf("expected at most 10 processed URLs, got %d", len(resp.Data))
	}
}

func TestAPI_BatchMissingURLs(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session { return &fakeSession{} })

	for _, body := range []string{`{}`, `{"urls":[]}`} {
		w := postJSON(t, srv.Handler(), "/scrape/batch", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestAPI_BatchSummary(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session {
		return &fakeSession{responses: []netResponse{tiktokDetailResponse(
			`{"itemInfo":{"itemStruct":{"stats":{"playCount":100,"diggCount":10,"commentCount":5,"shareCount":1}}}}`,
		)}}
	})

	body, _ := json.Marshal(map[string]any{"urls": []string{tiktokVideoURL, tiktokVideoURL}})
	w := postJSON(t, srv.Handler(), "/scrape/batch", string(body))

	var resp struct {
		Data    []StatRecord `json:"data"`
		Summary BatchSummary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := BatchSummary{TotalViews: 200, TotalLikes: 20, TotalComments: 10, TotalShares: 2}
	if resp.Summary != want {
		t.Errorf("summary = %+v, want %+v", resp.Summary, want)
	}
}

func TestAPI_CORSHeaders(t *testing.T) {
	t.Parallel()
	srv := newTestServer(func(string) session { return &fakeSession{} })

	req := httptest.NewRequest(http.MethodOptions, "/scrape", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
