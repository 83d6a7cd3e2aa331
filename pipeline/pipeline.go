// Package pipeline runs one fetch, merge and rank pass over a list of feeds.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/scipunch/packard/fetcher"
	"github.com/scipunch/packard/fetcher/types"
	"github.com/scipunch/packard/filter"
	"github.com/scipunch/packard/rank"
)

type Options struct {
	Sources []string
	Count   uint32
	Skip    uint32

	// Fetcher defaults to an RSSFetcher without timeout
	Fetcher  types.FeedFetcher
	Progress types.Progress

	// Filters, when set, drop items before ranking
	Filters     *filter.Pipeline
	FilterNames []string
}

// Result is the final page in descending recency order.
// Failures lists the sources that contributed nothing; they are informational.
type Result struct {
	Items    []types.FeedItem
	Failures []*fetcher.SourceError
}

// Run fetches all sources concurrently, merges their items and returns the requested page.
// Individual source failures never fail the run.
func Run(ctx context.Context, opts Options) Result {
	f := opts.Fetcher
	if f == nil {
		f = fetcher.NewRSSFetcher(fetcher.Options{})
	}

	fetched := fetcher.FetchAll(ctx, f, opts.Sources, opts.Progress)

	items := fetched.Items
	if opts.Filters != nil {
		items = opts.Filters.Apply(items, opts.FilterNames)
	}

	page := rank.Page(items, opts.Count, opts.Skip)
	slog.Debug("pipeline finished",
		"sources", len(opts.Sources),
		"failed", len(fetched.Failures),
		"fetched", len(fetched.Items),
		"kept", len(items),
		"page", len(page))

	return Result{Items: page, Failures: fetched.Failures}
}
