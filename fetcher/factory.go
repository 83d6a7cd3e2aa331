package fetcher

import (
	"github.com/scipunch/packard/config"
)

// FromParams creates the RSS fetcher configured for a run
func FromParams(p config.Params) *RSSFetcher {
	return NewRSSFetcher(Options{
		Timeout:   p.Timeout,
		UserAgent: p.UserAgent,
	})
}
