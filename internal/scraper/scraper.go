// Package scraper resolves a marketplace search term to a product thumbnail
// URL by fetching the search page and reading its social-preview metadata.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultSearchBase = "https://www.amazon.com/s"
	fetchTimeout      = 10 * time.Second
	maxPageSize       = 2 << 20 // 2MB
)

// SearchURL builds the marketplace search link for a product search term.
func SearchURL(term string) string {
	return defaultSearchBase + "?k=" + url.QueryEscape(term)
}

// Client fetches pages and extracts thumbnail URLs.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a scraper Client. Pass nil to use a default HTTP client.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  "Mozilla/5.0 (compatible; hearth/1.0)",
	}
}

// FetchThumbnail fetches pageURL and returns the first og:image or
// twitter:image URL found in its head. Any failure — network, non-OK status,
// no image metadata — is an error; callers treat all of them as "no
// thumbnail available".
func (c *Client) FetchThumbnail(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	thumb, err := extractImageMeta(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", err
	}
	if thumb == "" {
		return "", fmt.Errorf("no image metadata in page")
	}
	return thumb, nil
}

// extractImageMeta walks the HTML token stream looking for
// <meta property="og:image"> or <meta name="twitter:image">.
func extractImageMeta(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", nil
			}
			return "", fmt.Errorf("parsing html: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			var key, content string
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "property", "name":
					key = strings.ToLower(attr.Val)
				case "content":
					content = attr.Val
				}
			}
			if (key == "og:image" || key == "twitter:image") && content != "" {
				return content, nil
			}
		}
	}
}
