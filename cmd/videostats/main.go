package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Azotik83/videostats"
)

func main() {
	urlFlag := flag.String("url", "", "Single video URL to scrape")
	file := flag.String("file", "", "File containing URLs, one per line")
	output := flag.String("output", "output.json", "Output file path")
	csvExport := flag.Bool("csv", false, "Also export results as CSV")
	visible := flag.Bool("visible", false, "Run the browser in visible (non-headless) mode")
	proxyURL := flag.String("proxy", "", "Proxy URL (http/https/socks5)")
	resolve := flag.Bool("resolve", false, "Expand TikTok short links before scraping")
	configPath := flag.String("config", "", "Path to YAML config file")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")
	flag.Parse()

	if *urlFlag == "" && *file == "" {
		fmt.Fprintln(os.Stderr, "usage: videostats --url <video url> | --file <url list> [--output out.json] [--csv]")
		os.Exit(1)
	}

	cfg, err := videostats.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *visible {
		cfg.Scraper.Headless = false
	}
	if *proxyURL != "" {
		cfg.Scraper.Proxy = *proxyURL
	}
	if *resolve {
		cfg.Scraper.ResolveShortLinks = true
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	log := newLogger(cfg.Logging.Level)

	var urls []string
	if *urlFlag != "" {
		urls = append(urls, *urlFlag)
	}
	if *file != "" {
		fromFile, err := videostats.LoadURLFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("load url file")
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		log.Fatal().Msg("no urls to process")
	}

	scraper, err := cfg.NewScraper(log)
	if err != nil {
		log.Fatal().Err(err).Msg("configure scraper")
	}
	limiter := cfg.NewLimiter()

	log.Info().Int("urls", len(urls)).Int("max_requests", cfg.RateLimit.MaxRequests).
		Msg("starting scrape")

	records := scraper.ScrapeBatch(context.Background(), urls, limiter)

	if err := videostats.WriteJSON(*output, records); err != nil {
		log.Fatal().Err(err).Msg("write results")
	}
	log.Info().Str("path", *output).Msg("results saved")

	if *csvExport {
		csvPath := strings.TrimSuffix(*output, ".json") + ".csv"
		if err := videostats.WriteCSV(csvPath, records); err != nil {
			log.Fatal().Err(err).Msg("write csv")
		}
		log.Info().Str("path", csvPath).Msg("csv saved")
	}

	sum := videostats.Summarize(records)
	fmt.Printf("\nScraped %d videos\n", len(records))
	fmt.Printf("  Total views:    %d\n", sum.TotalViews)
	fmt.Printf("  Total likes:    %d\n", sum.TotalLikes)
	fmt.Printf("  Total comments: %d\n", sum.TotalComments)
	fmt.Printf("  Total shares:   %d\n", sum.TotalShares)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
