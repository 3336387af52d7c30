// Package domainlist acquires the list of domains fed to a benchmark run. It
// downloads and extracts the Cisco Umbrella top-1M CSV, reuses a previously
// downloaded copy and degrades to a small built-in list when acquisition fails.
package domainlist

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// UmbrellaURL points to the Cisco Umbrella top 1 million domains list.
	UmbrellaURL = "https://s3-us-west-1.amazonaws.com/umbrella-static/top-1m.csv.zip"

	// DefaultLocalFile is the name of the extracted CSV file, reused across runs.
	DefaultLocalFile = "top-1m.csv"

	// DefaultCount is the default number of top domains used for a run.
	DefaultCount = 10000
)

// Fallback is the built-in domain list used when the top-1M list cannot be
// acquired.
var Fallback = []string{
	"google.com", "youtube.com", "facebook.com", "twitter.com", "instagram.com",
	"wikipedia.org", "amazon.com", "yahoo.com", "reddit.com", "netflix.com",
	"office.com", "linkedin.com", "microsoft.com", "apple.com", "ebay.com",
	"bing.com", "twitch.tv", "stackoverflow.com", "github.com", "wordpress.org",
}

// Loader acquires domain lists. The zero value downloads the Umbrella list
// into DefaultLocalFile using a default HTTP client.
type Loader struct {
	URL        string
	LocalFile  string
	HTTPClient *http.Client
}

func (l *Loader) url() string {
	if l.URL == "" {
		return UmbrellaURL
	}
	return l.URL
}

func (l *Loader) localFile() string {
	if l.LocalFile == "" {
		return DefaultLocalFile
	}
	return l.LocalFile
}

func (l *Loader) client() *http.Client {
	if l.HTTPClient == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	return l.HTTPClient
}

// Load returns up to count domains, reusing the local CSV copy when present
// and downloading it otherwise. When the list cannot be acquired or parsed
// the built-in Fallback list is returned and fallback is true.
func (l *Loader) Load(count int) (domains []string, fallback bool) {
	if count <= 0 {
		count = DefaultCount
	}

	if _, err := os.Stat(l.localFile()); err != nil {
		if err := l.download(); err != nil {
			return truncated(Fallback, count), true
		}
	}

	f, err := os.Open(l.localFile())
	if err != nil {
		return truncated(Fallback, count), true
	}
	defer f.Close()

	domains, err = ParseCSV(f, count)
	if err != nil || len(domains) == 0 {
		return truncated(Fallback, count), true
	}
	return domains, false
}

// download fetches the zipped list and extracts the CSV member next to the
// configured local file.
func (l *Loader) download() error {
	resp, err := l.client().Get(l.url())
	if err != nil {
		return fmt.Errorf("failed to download domain list '%s': %w", l.url(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to download domain list '%s' with status '%s'", l.url(), resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read domain list '%s': %w", l.url(), err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("downloaded domain list '%s' is not a valid ZIP file: %w", l.url(), err)
	}

	member := pickCSVMember(zr, filepath.Base(l.localFile()))
	if member == nil {
		return fmt.Errorf("no CSV file found in the ZIP downloaded from '%s'", l.url())
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to extract '%s': %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(l.localFile())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to extract '%s': %w", member.Name, err)
	}
	return nil
}

// pickCSVMember prefers the expected member name and falls back to the first
// CSV member in the archive.
func pickCSVMember(zr *zip.Reader, expected string) *zip.File {
	var firstCSV *zip.File
	for _, f := range zr.File {
		if f.Name == expected {
			return f
		}
		if firstCSV == nil && strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			firstCSV = f
		}
	}
	return firstCSV
}

// ParseCSV reads up to count domains from the rank,domain CSV format of the
// Umbrella list. Malformed rows are skipped.
func ParseCSV(r io.Reader, count int) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	domains := make([]string, 0, count)
	for len(domains) < count {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read domain list CSV: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		if domain := strings.TrimSpace(row[1]); domain != "" {
			domains = append(domains, domain)
		}
	}
	return domains, nil
}

// Shuffle randomizes the domain order in place to avoid sequential access
// bias of a popularity ranked list.
func Shuffle(domains []string) {
	rand.Shuffle(len(domains), func(i, j int) {
		domains[i], domains[j] = domains[j], domains[i]
	})
}

func truncated(domains []string, count int) []string {
	if count > len(domains) {
		count = len(domains)
	}
	out := make([]string, count)
	copy(out, domains[:count])
	return out
}
