// Package catalog fetches the remote listing of published MongoDB
// releases and extracts the version numbers it mentions.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"time"

	"mvm/internal/version"
)

// DefaultURL is the directory listing scraped for published versions.
const DefaultURL = "https://dl.mongodb.org/dl/src"

var listingPattern = regexp.MustCompile(`\b(\d+\.\d+\.\d+(?:-rc\d+)?)\b`)

// Client scrapes an HTTP-served listing for version-like substrings.
// The listing format is not structured; anything matching
// MAJOR.MINOR.PATCH[-rcN] counts.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// New returns a catalog client for url, defaulting to DefaultURL.
func New(url string, httpClient *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{URL: url, HTTPClient: httpClient}
}

// Versions fetches the listing and returns the distinct versions found,
// sorted ascending.
func (c *Client) Versions(ctx context.Context) ([]version.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CAT_FETCH: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CAT_FETCH: status %d from %s", resp.StatusCode, c.URL)
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("CAT_FETCH: %w", err)
	}
	return ParseListing(string(blob)), nil
}

// ParseListing extracts the distinct versions mentioned in a listing
// page, sorted ascending.
func ParseListing(listing string) []version.Version {
	seen := map[string]struct{}{}
	var out []version.Version
	for _, m := range listingPattern.FindAllString(listing, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		v, err := version.Parse(m)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return version.Less(out[i], out[j]) })
	return out
}
