// Package fetch retrieves article pages and reduces them to their story text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; NewsLens/1.0)"
	DefaultMaxBytes  = 4 << 20
)

// Page is a downloaded article page.
type Page struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error describes a page that could not be downloaded.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options controls page downloads. Zero fields take the package defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
	Client    *http.Client
}

// DefaultOptions returns the options used for content backfill.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

func (o *Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Get downloads an article page. Only http(s) URLs are accepted and the body
// must be HTML. On a non-200 status the Page is returned with the error so the
// caller can inspect the status code.
func Get(ctx context.Context, rawURL string, opts *Options) (*Page, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := checkArticleURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	page := &Page{
		URL:         rawURL,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if !isHTML(page.ContentType) {
		return page, &Error{URL: rawURL, Message: "not an HTML page: " + page.ContentType}
	}
	return page, nil
}

func checkArticleURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{URL: rawURL, Message: "unsupported scheme " + u.Scheme}
	}
	return nil
}

// isHTML accepts a missing content type; PDFs, images and feeds are rejected.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return media == "text/html" || media == "application/xhtml+xml"
}

// pageNoise is stripped from every page before the story body is located.
var pageNoise = []string{
	"nav", "footer", "header", "script", "style", "noscript", "aside",
	"figure figcaption", ".ad", ".advertisement", ".ads", ".sidebar",
	".cookie-banner", ".popup",
}

// storyBlocks are the elements whose text makes up a story body.
const storyBlocks = "h1, h2, h3, h4, p, li, blockquote, pre"

// ArticleText returns the story text of an HTML page. The first selector in
// bodySelectors that matches is taken as the story container, else <body>.
// Within the container, headings and paragraphs become one line each; a
// container without such blocks contributes its raw text.
func ArticleText(html string, bodySelectors []string, noise ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(strings.Join(append(append([]string{}, pageNoise...), noise...), ", ")).Remove()

	container := doc.Find("body")
	for _, sel := range bodySelectors {
		if match := doc.Find(sel); match.Length() > 0 {
			container = match.First()
			break
		}
	}

	var lines []string
	container.Find(storyBlocks).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsFiltered(storyBlocks).Length() == 0
		}).
		Each(func(_ int, s *goquery.Selection) {
			if line := collapseSpaces(s.Text()); line != "" {
				lines = append(lines, line)
			}
		})
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), nil
	}
	return cleanLines(container.Text()), nil
}

// ArticleSelectors are the generic story-body containers, most specific first.
func ArticleSelectors() []string {
	return []string{
		"[itemprop='articleBody']",
		".article-body",
		".article__body",
		".story-body",
		".entry-content",
		"article",
		"main",
		"#content",
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanLines trims every line and drops blank ones.
func cleanLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = collapseSpaces(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
