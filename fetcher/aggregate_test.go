package fetcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/packard/fetcher/types"
)

type stubFetcher struct {
	feeds    map[string][]types.FeedItem
	failures map[string]error
	delay    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (s *stubFetcher) Fetch(ctx context.Context, url string, progress types.Progress) ([]types.FeedItem, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		cur := s.maxInFlight.Load()
		if n <= cur || s.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	if err, ok := s.failures[url]; ok {
		return nil, err
	}
	items, ok := s.feeds[url]
	if !ok {
		return nil, errors.New("no such feed")
	}
	progress.Advance()
	progress.SetMessage("Processing: " + url)
	return items, nil
}

func item(title string, day int) types.FeedItem {
	return types.FeedItem{
		Title:       title,
		Description: "d",
		Link:        "https://example.com/" + title,
		Published:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchAll_IsolatesFailures(t *testing.T) {
	stub := &stubFetcher{
		feeds: map[string][]types.FeedItem{
			"a": {item("a1", 1), item("a2", 2)},
			"c": {item("c1", 3)},
		},
		failures: map[string]error{"b": errors.New("malformed XML")},
	}
	progress := &recordingProgress{}

	res := FetchAll(context.Background(), stub, []string{"a", "b", "c"}, progress)

	assert.ElementsMatch(t, []types.FeedItem{item("a1", 1), item("a2", 2), item("c1", 3)}, res.Items)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "b", res.Failures[0].URL)
	assert.EqualError(t, errors.Unwrap(res.Failures[0]), "malformed XML")
	assert.Equal(t, 2, progress.advanced)
}

func TestFetchAll_FlattensInSourceOrder(t *testing.T) {
	stub := &stubFetcher{feeds: map[string][]types.FeedItem{
		"x": {item("x1", 5)},
		"y": {item("y1", 1), item("y2", 9)},
	}}

	res := FetchAll(context.Background(), stub, []string{"y", "x"}, nil)

	assert.Equal(t, []types.FeedItem{item("y1", 1), item("y2", 9), item("x1", 5)}, res.Items)
	assert.Empty(t, res.Failures)
}

func TestFetchAll_AllFail(t *testing.T) {
	stub := &stubFetcher{}

	res := FetchAll(context.Background(), stub, []string{"one", "two"}, nil)

	assert.Empty(t, res.Items)
	assert.Len(t, res.Failures, 2)
}

func TestFetchAll_NoSources(t *testing.T) {
	res := FetchAll(context.Background(), &stubFetcher{}, nil, nil)

	assert.Empty(t, res.Items)
	assert.Empty(t, res.Failures)
}

func TestFetchAll_FullFanOut(t *testing.T) {
	sources := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	feeds := make(map[string][]types.FeedItem, len(sources))
	for _, s := range sources {
		feeds[s] = nil
	}
	stub := &stubFetcher{feeds: feeds, delay: 100 * time.Millisecond}

	start := time.Now()
	FetchAll(context.Background(), stub, sources, nil)

	assert.EqualValues(t, len(sources), stub.maxInFlight.Load(), "every source should be in flight at once")
	assert.Less(t, time.Since(start), time.Duration(len(sources))*100*time.Millisecond)
}

func TestFetchAll_ConcurrentProgress(t *testing.T) {
	sources := make([]string, 50)
	feeds := make(map[string][]types.FeedItem, len(sources))
	for i := range sources {
		sources[i] = string(rune('A' + i))
		feeds[sources[i]] = []types.FeedItem{item(sources[i], 1)}
	}
	progress := &recordingProgress{}

	res := FetchAll(context.Background(), &stubFetcher{feeds: feeds}, sources, progress)

	assert.Len(t, res.Items, len(sources))
	assert.Equal(t, len(sources), progress.advanced)
	assert.Len(t, progress.messages, len(sources))
}

func TestSourceError(t *testing.T) {
	base := errors.New("connection refused")
	err := &SourceError{URL: "https://example.com/feed", Err: base}

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "'https://example.com/feed' fetch failed with connection refused", err.Error())
}
