// Package rank orders feed items by recency and cuts a pagination window out of them.
package rank

import (
	"slices"

	"github.com/scipunch/packard/fetcher/types"
)

// SortByRecency returns a copy of items sorted most recent first.
// Items with equal timestamps keep their input order.
func SortByRecency(items []types.FeedItem) []types.FeedItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b types.FeedItem) int {
		return b.Published.Compare(a.Published)
	})
	return sorted
}

// Page returns the count most recent items after skipping the skip most recent ones.
// The window is computed in 64 bits so count+skip never overflows.
func Page(items []types.FeedItem, count, skip uint32) []types.FeedItem {
	sorted := SortByRecency(items)

	end := uint64(count) + uint64(skip)
	if end > uint64(len(sorted)) {
		end = uint64(len(sorted))
	}
	start := uint64(skip)
	if start >= end {
		return []types.FeedItem{}
	}
	return sorted[start:end]
}
