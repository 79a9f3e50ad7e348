// Package fetch retrieves reference pages over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/go-shiori/go-readability"
	"github.com/japaniel/glossword/pkg/gloss"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// maxBodySize bounds how much of a page is read into memory.
const maxBodySize = 10 * 1024 * 1024

// DefaultUserAgent mimics a desktop browser; both reference sites serve
// reduced pages to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher returns the decoded body of the page at rawURL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Options configure a Client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// Client fetches pages with resty. It never retries.
type Client struct {
	rc  *resty.Client
	log zerolog.Logger
}

// New returns a Client. A zero Timeout means no client-side timeout.
func New(opts Options) *Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("Sec-Fetch-Dest", "document").
		SetHeader("Sec-Fetch-Mode", "navigate").
		SetHeader("Upgrade-Insecure-Requests", "1")
	return &Client{rc: rc, log: opts.Logger}
}

// Fetch downloads rawURL and decodes the body using the response charset.
// The status code is not checked: a missing word still yields a page whose
// body carries the suggestion list.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to complete HTTP request: %w", gloss.ErrTransport, err)
	}
	body := resp.RawBody()
	defer body.Close()

	c.log.Debug().Str("url", rawURL).Int("status", resp.StatusCode()).Msg("fetched page")

	contentType := resp.Header().Get("Content-Type")
	if resp.RawResponse != nil && resp.RawResponse.ContentLength > maxBodySize {
		return "", fmt.Errorf("%w: Content-Length %d exceeds limit of %d bytes",
			gloss.ErrTransport, resp.RawResponse.ContentLength, maxBodySize)
	}

	text, err := decode(io.LimitReader(body, maxBodySize+1), contentType)
	if err != nil {
		return "", err
	}
	if len(text) > maxBodySize {
		return "", fmt.Errorf("%w: response body exceeded maximum size of %d bytes", gloss.ErrTransport, maxBodySize)
	}
	return text, nil
}

// decode converts body to UTF-8 according to contentType, sniffing the
// content when no charset is declared.
func decode(body io.Reader, contentType string) (string, error) {
	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode HTTP response body: %w", gloss.ErrTransport, err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read HTTP response body: %w", gloss.ErrTransport, err)
	}
	return string(b), nil
}

// PageTitle extracts the article title of a fetched page. It is only used
// for diagnostics and returns "" when nothing can be extracted.
func PageTitle(body, rawURL string) string {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Title)
}
