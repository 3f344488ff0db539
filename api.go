package videostats

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// maxBatchURLs caps a single batch request; excess URLs are silently
// truncated, matching the contract the video-manager frontend relies on.
const maxBatchURLs = 10

// Server is the HTTP boundary over the scraper. It is deliberately thin:
// the handlers translate JSON in and out of Scrape/ScrapeBatch and own no
// extraction logic.
type Server struct {
	cfg *Config
	log zerolog.Logger
	mux *http.ServeMux

	// newScraper is replaceable for handler tests.
	newScraper func(headless bool) (*Scraper, error)
}

// NewServer wires the routes. Call Handler for the http.Handler or
// ListenAndServe to run it.
func NewServer(cfg *Config, log zerolog.Logger) *Server {
	srv := &Server{cfg: cfg, log: log}
	srv.newScraper = func(headless bool) (*Scraper, error) {
		c := *cfg
		c.Scraper.Headless = headless
		return c.NewScraper(log)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("POST /scrape", srv.handleScrape)
	mux.HandleFunc("POST /scrape/batch", srv.handleScrapeBatch)
	srv.mux = mux
	return srv
}

// Handler returns the routed handler wrapped in CORS middleware.
func (srv *Server) Handler() http.Handler {
	return withCORS(srv.mux)
}

// ListenAndServe blocks serving the API on the configured address.
func (srv *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", srv.cfg.Server.Host, srv.cfg.Server.Port)
	srv.log.Info().Str("addr", addr).Msg("stats api listening")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpServer.ListenAndServe()
}

type scrapeRequest struct {
	URL      string `json:"url"`
	Headless *bool  `json:"headless"`
}

type batchRequest struct {
	URLs     []string `json:"urls"`
	Headless *bool    `json:"headless"`
}

type apiResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Summary *BatchSummary `json:"summary,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (srv *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Error:   `missing "url" in request body`,
		})
		return
	}

	scraper, err := srv.newScraper(req.headlessOr(true))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: err.Error()})
		return
	}

	rec := scraper.Scrape(r.Context(), req.URL)
	if rec.Error != "" {
		// The record still carries the zeroed quadruple so the caller
		// can render something.
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Error: rec.Error, Data: rec})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: rec})
}

func (srv *Server) handleScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Error:   `missing "urls" in request body`,
		})
		return
	}

	urls := req.URLs
	if len(urls) > maxBatchURLs {
		urls = urls[:maxBatchURLs]
	}

	scraper, err := srv.newScraper(req.headlessOr(true))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: err.Error()})
		return
	}

	// A fresh limiter per batch run: concurrent batch requests must not
	// share pacing state.
	records := scraper.ScrapeBatch(r.Context(), urls, srv.cfg.NewLimiter())
	summary := Summarize(records)
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: records, Summary: &summary})
}

func (req *scrapeRequest) headlessOr(def bool) bool {
	if req.Headless == nil {
		return def
	}
	return *req.Headless
}

func (req *batchRequest) headlessOr(def bool) bool {
	if req.Headless == nil {
		return def
	}
	return *req.Headless
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// withCORS allows the video-manager frontend, served from another origin,
// to call the API directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
