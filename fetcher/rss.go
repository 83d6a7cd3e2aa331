package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"github.com/scipunch/packard/fetcher/types"
)

const defaultUserAgent = "packard/0.1"

// Options configures an RSSFetcher
type Options struct {
	// Timeout bounds a single fetch including the body read. Zero means no limit.
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// RSSFetcher fetches RSS feeds over HTTP and parses them with gofeed
type RSSFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	now       func() time.Time
}

// NewRSSFetcher creates a new RSS fetcher
func NewRSSFetcher(opts Options) *RSSFetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &RSSFetcher{
		client:    client,
		timeout:   opts.Timeout,
		userAgent: ua,
		now:       time.Now,
	}
}

// Fetch retrieves the RSS document at url and maps its entries into feed items.
// Progress is advanced only when both retrieval and parsing succeed.
func (f *RSSFetcher) Fetch(ctx context.Context, url string, progress types.Progress) ([]types.FeedItem, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}

	channel, err := f.parse(body)
	if err != nil {
		return nil, err
	}

	progress.Advance()
	progress.SetMessage("Processing: " + channel.Title)

	return channel.Items, nil
}

func (f *RSSFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// parse decodes an RSS payload. Atom, JSON feeds and arbitrary XML are rejected.
func (f *RSSFetcher) parse(body []byte) (types.Channel, error) {
	var channel types.Channel

	parser := &rss.Parser{}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return channel, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	channel.Title = feed.Title
	channel.Items = make([]types.FeedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		channel.Items = append(channel.Items, convertItem(item, f.now))
	}
	return channel, nil
}

func convertItem(item *rss.Item, now func() time.Time) types.FeedItem {
	return types.FeedItem{
		Title:       orDefault(item.Title, types.NoTitle),
		Description: orDefault(item.Description, types.NoDescription),
		Link:        orDefault(item.Link, types.NoLink),
		Published:   parsePubDate(item.PubDate, now),
	}
}

func orDefault(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// Zone names allowed by RFC 2822 sections 3.3 and 4.3, plus the military "Z".
// Any other alphabetic zone is rejected since time.Parse would give it a zero offset.
var namedZones = map[string]string{
	"UT":  "+0000",
	"UTC": "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// parsePubDate parses an RFC 2822 date and converts it to UTC.
// An absent or malformed date, an unknown zone name or a weekday that
// contradicts the date yields the current time.
func parsePubDate(value string, now func() time.Time) time.Time {
	value = strings.TrimSpace(value)

	// a trailing (comment) carries no meaning
	if strings.HasSuffix(value, ")") {
		if i := strings.LastIndexByte(value, '('); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
	}
	if value == "" {
		return now().UTC()
	}

	if i := strings.LastIndexByte(value, ' '); i >= 0 {
		zone := value[i+1:]
		if offset, ok := namedZones[strings.ToUpper(zone)]; ok {
			value = value[:i+1] + offset
		} else if isAlpha(zone) {
			return now().UTC()
		}
	}

	t, err := mail.ParseDate(value)
	if err != nil {
		return now().UTC()
	}

	if day, _, found := strings.Cut(value, ","); found {
		if !strings.EqualFold(strings.TrimSpace(day), t.Weekday().String()[:3]) {
			return now().UTC()
		}
	}
	return t.UTC()
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
