package videostats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// exportDocument is the JSON summary the CLI writes.
type exportDocument struct {
	ScrapedAt time.Time    `json:"scraped_at"`
	TotalURLs int          `json:"total_urls"`
	Results   []StatRecord `json:"results"`
}

// WriteJSON writes records as an indented JSON summary document.
func WriteJSON(path string, records []StatRecord) error {
	doc := exportDocument{
		ScrapedAt: time.Now(),
		TotalURLs: len(records),
		Results:   records,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Fixed CSV column order; downstream spreadsheets depend on it.
var csvHeader = []string{"url", "platform", "views", "likes", "comments", "shares", "scraped_at", "error"}

// WriteCSV writes records as CSV with the fixed column order.
func WriteCSV(path string, records []StatRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.URL,
			string(r.Platform),
			strconv.Itoa(r.Views),
			strconv.Itoa(r.Likes),
			strconv.Itoa(r.Comments),
			strconv.Itoa(r.Shares),
			r.ScrapedAt.Format(time.RFC3339),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// LoadURLFile reads a newline-delimited URL list. Blank lines and lines
// starting with '#' are skipped.
func LoadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return urls, nil
}
