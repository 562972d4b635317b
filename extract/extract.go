// Package extract fetches a web page and isolates its main content as HTML
// ready for conversion.
package extract

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a whole fetch, including reading the body.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent identifies the extractor to remote servers.
	DefaultUserAgent = "Mozilla/5.0 (compatible; html-docusaurus-converter/1.0)"
	// DefaultMaxBodyBytes caps the response size read from the server.
	DefaultMaxBodyBytes = 10 << 20
)

var (
	ErrInvalidURL = errors.New("invalid URL")
	ErrNotHTML    = errors.New("URL does not return HTML content")
	ErrNoContent  = errors.New("no meaningful content found on the page")
	ErrTimeout    = errors.New("request timeout: the webpage took too long to respond")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
}

// Options configures an Extractor. Zero values select the defaults.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Client       *http.Client
}

// Extractor downloads pages and extracts their main content.
// An Extractor is safe for concurrent use.
type Extractor struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// Page is the extracted content of one URL.
type Page struct {
	HTML          string    `json:"html"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	ExtractedAt   time.Time `json:"extractedAt"`
	ContentLength int       `json:"contentLength"`
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	e := &Extractor{
		client:       opts.Client,
		timeout:      opts.Timeout,
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.userAgent == "" {
		e.userAgent = DefaultUserAgent
	}
	if e.maxBodyBytes <= 0 {
		e.maxBodyBytes = DefaultMaxBodyBytes
	}
	return e
}

// Timeout returns the per-request timeout.
func (e *Extractor) Timeout() time.Duration {
	return e.timeout
}

// Extract fetches rawURL and returns its main content.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Page, error) {
	target, err := parseURL(rawURL)
	if err != nil {
		return Page{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, err := e.fetch(ctx, target)
	if err != nil {
		return Page{}, err
	}

	content, title, err := Content(body)
	if err != nil {
		return Page{}, err
	}

	return Page{
		HTML:          content,
		Title:         title,
		URL:           rawURL,
		ExtractedAt:   time.Now().UTC(),
		ContentLength: len(content),
	}, nil
}

func parseURL(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return parsed.String(), nil
}

func (e *Extractor) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", wrapFetchError(ctx, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("%w (content type %q)", ErrNotHTML, contentType)
	}

	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip decode failed: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	decoded, err := charset.NewReader(io.LimitReader(reader, e.maxBodyBytes), contentType)
	if err != nil {
		return "", fmt.Errorf("decoding charset: %w", err)
	}

	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", wrapFetchError(ctx, target, err)
	}
	return string(body), nil
}

func wrapFetchError(ctx context.Context, target string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, target)
	}
	return fmt.Errorf("fetching %s: %w", target, err)
}
