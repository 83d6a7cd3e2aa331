package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/scipunch/packard/fetcher/types"
)

// SourceError records why a single source contributed no items
type SourceError struct {
	URL string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("'%s' fetch failed with %s", e.URL, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Result is the union of all successfully fetched items
type Result struct {
	Items    []types.FeedItem
	Failures []*SourceError
}

type outcome struct {
	items []types.FeedItem
	err   error
}

// FetchAll fetches every source concurrently and waits for all of them.
// A failing source contributes zero items and never affects the others.
// Items are flattened in source order; ordering across sources carries no meaning.
func FetchAll(ctx context.Context, f types.FeedFetcher, sources []string, progress types.Progress) Result {
	if progress == nil {
		progress = types.NopProgress{}
	}

	outcomes := make([]outcome, len(sources))

	var g errgroup.Group
	for i, url := range sources {
		i, url := i, url
		g.Go(func() error {
			items, err := f.Fetch(ctx, url, progress)
			outcomes[i] = outcome{items: items, err: err}
			return nil // never fail the group, errors are kept per source
		})
	}
	_ = g.Wait()

	var res Result
	for i, o := range outcomes {
		if o.err != nil {
			slog.Debug("source skipped", "url", sources[i], "error", o.err)
			res.Failures = append(res.Failures, &SourceError{URL: sources[i], Err: o.err})
			continue
		}
		res.Items = append(res.Items, o.items...)
	}
	return res
}
