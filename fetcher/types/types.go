package types

import (
	"context"
	"time"
)

// Placeholders used when a feed entry omits a field
const (
	NoTitle       = "No title"
	NoDescription = "No description"
	NoLink        = "No link"
)

// Channel is one parsed RSS document
type Channel struct {
	Title string
	Items []FeedItem
}

// FeedItem represents a single item in a feed.
// Every field is populated; missing values are replaced by the placeholders above.
type FeedItem struct {
	Title       string
	Description string
	Link        string
	Published   time.Time // always UTC
}

// Progress receives fetch progress updates. Implementations must be safe for concurrent use.
type Progress interface {
	Advance()
	SetMessage(msg string)
}

// FeedFetcher retrieves and normalizes the items of one feed URL
type FeedFetcher interface {
	Fetch(ctx context.Context, url string, progress Progress) ([]FeedItem, error)
}

// NopProgress discards all updates
type NopProgress struct{}

func (NopProgress) Advance()          {}
func (NopProgress) SetMessage(string) {}
