// batchfetch drives a running reviewd instance through a list of product
// URLs, one request at a time. Fetches hold browser pages on the server
// side, so the client stays sequential and patient.
package main

import (
	"bufio"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})

	urlsFileFlag := flag.String("urls", "urls.txt", "File with one product URL per line ('#' comments allowed)")
	addrFlag := flag.String("addr", "http://localhost:8080", "Base URL of the running service")
	delayFlag := flag.Duration("delay", 2*time.Second, "Pause between requests")
	flag.Parse()

	urls, err := readURLs(*urlsFileFlag)
	if err != nil {
		log.Fatalf("Reading URL list: %v", err)
	}
	if len(urls) == 0 {
		log.Fatalf("No URLs found in %s", *urlsFileFlag)
	}
	log.Infof("Fetching %d listings via %s", len(urls), *addrFlag)

	client := resty.New().
		SetBaseURL(*addrFlag).
		// Walking a long review chain can legitimately take minutes.
		SetTimeout(30 * time.Minute)

	var ok, failed int
	for i, u := range urls {
		entry := log.WithFields(logrus.Fields{"n": i + 1, "of": len(urls), "url": u})

		var result struct {
			Title    string `json:"title"`
			Pages    int    `json:"pages"`
			Reviews  int    `json:"reviews"`
			Inserted int64  `json:"inserted"`
		}
		var apiErr struct {
			Error string `json:"error"`
		}

		resp, err := client.R().
			SetBody(map[string]string{"product_url": u}).
			SetResult(&result).
			SetError(&apiErr).
			Post("/fetch")
		switch {
		case err != nil:
			failed++
			entry.Errorf("Request failed: %v", err)
		case resp.IsError():
			failed++
			entry.Errorf("Fetch failed (%d): %s", resp.StatusCode(), apiErr.Error)
		default:
			ok++
			entry.Infof("Fetched %q: %d pages, %d reviews (%d new)",
				result.Title, result.Pages, result.Reviews, result.Inserted)
		}

		if i < len(urls)-1 {
			time.Sleep(*delayFlag)
		}
	}

	log.Infof("Done: %d fetched, %d failed", ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
