package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageResult struct {
	items []string
	err   error
}

// scriptedFetcher answers calls from a fixed script, one entry per call
type scriptedFetcher struct {
	mu     sync.Mutex
	script []pageResult
	pages  []int
}

func (s *scriptedFetcher) fetch(_ context.Context, _ string, page int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, page)
	if len(s.script) == 0 {
		return nil, nil
	}
	r := s.script[0]
	s.script = s.script[1:]
	return r.items, r.err
}

func makeItems(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return out
}

func TestRequestNextPageRetriesSamePageAfterFailure(t *testing.T) {
	fetcher := &scriptedFetcher{script: []pageResult{
		{items: makeItems("p1", 20)},
		{err: errors.New("upstream timeout")},
		{items: makeItems("p2", 18)},
	}}
	acc := NewAccumulator(fetcher.fetch, nil)
	ctx := context.Background()

	got, err := acc.RequestNextPage(ctx, "Japan")
	require.NoError(t, err)
	assert.Len(t, got, 20)

	_, err = acc.RequestNextPage(ctx, "Japan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream timeout")

	snap := acc.Snapshot("Japan")
	assert.Len(t, snap.Items, 20, "failure keeps accumulated items")
	assert.Equal(t, 2, snap.NextPage)
	assert.False(t, snap.Fetching)

	_, err = acc.RequestNextPage(ctx, "Japan")
	require.NoError(t, err)

	snap = acc.Snapshot("Japan")
	assert.Len(t, snap.Items, 38)
	assert.Equal(t, 3, snap.NextPage)
	assert.Equal(t, []int{1, 2, 2}, fetcher.pages)
}

func TestRequestNextPagePreservesOrder(t *testing.T) {
	sizes := []int{5, 3, 0, 7}
	var script []pageResult
	var want []string
	for i, n := range sizes {
		items := makeItems(fmt.Sprintf("page%d", i+1), n)
		script = append(script, pageResult{items: items})
		want = append(want, items...)
	}
	acc := NewAccumulator((&scriptedFetcher{script: script}).fetch, nil)

	for range sizes {
		_, err := acc.RequestNextPage(context.Background(), "Peru")
		require.NoError(t, err)
	}

	snap := acc.Snapshot("Peru")
	assert.Equal(t, want, snap.Items)
	assert.Equal(t, len(sizes)+1, snap.NextPage)
	assert.False(t, snap.Exhausted, "last page was not empty")
}

func TestEmptyPageMarksExhaustedWithoutStopping(t *testing.T) {
	fetcher := &scriptedFetcher{script: []pageResult{{items: nil}, {items: []string{"late"}}}}
	acc := NewAccumulator(fetcher.fetch, nil)

	_, err := acc.RequestNextPage(context.Background(), "Chad")
	require.NoError(t, err)
	assert.True(t, acc.Snapshot("Chad").Exhausted)

	_, err = acc.RequestNextPage(context.Background(), "Chad")
	require.NoError(t, err)
	snap := acc.Snapshot("Chad")
	assert.False(t, snap.Exhausted)
	assert.Equal(t, []string{"late"}, snap.Items)
}

func TestConcurrentRequestsMakeOneCall(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	acc := NewAccumulator(func(ctx context.Context, entity string, page int) ([]string, error) {
		calls.Add(1)
		close(started)
		<-release
		return []string{"a"}, nil
	}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := acc.RequestNextPage(context.Background(), "Kenya")
		done <- err
	}()

	<-started
	assert.True(t, acc.Snapshot("Kenya").Fetching)

	_, err := acc.RequestNextPage(context.Background(), "Kenya")
	assert.ErrorIs(t, err, ErrFetchInFlight)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 2, acc.Snapshot("Kenya").NextPage)
}

func TestResetIsIdempotent(t *testing.T) {
	acc := NewAccumulator((&scriptedFetcher{}).fetch, nil)

	acc.Reset("Fiji")
	acc.Reset("Fiji")

	snap := acc.Snapshot("Fiji")
	assert.Empty(t, snap.Items)
	assert.Equal(t, 1, snap.NextPage)
	assert.False(t, snap.Fetching)
}

func TestResetClearsCollection(t *testing.T) {
	fetcher := &scriptedFetcher{script: []pageResult{{items: makeItems("x", 4)}}}
	acc := NewAccumulator(fetcher.fetch, nil)

	_, err := acc.RequestNextPage(context.Background(), "Chile")
	require.NoError(t, err)

	acc.Reset("Chile")

	snap := acc.Snapshot("Chile")
	assert.Empty(t, snap.Items)
	assert.Equal(t, 1, snap.NextPage)
}

func TestResultAfterResetIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool

	acc := NewAccumulator(func(ctx context.Context, entity string, page int) ([]string, error) {
		close(started)
		select {
		case <-ctx.Done():
			cancelled.Store(true)
		case <-time.After(5 * time.Second):
		}
		return []string{"stale"}, nil
	}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := acc.RequestNextPage(context.Background(), "Brazil")
		done <- err
	}()

	<-started
	acc.Reset("Brazil")

	assert.ErrorIs(t, <-done, ErrStaleResult)
	assert.True(t, cancelled.Load(), "in-flight fetch is cancelled")

	snap := acc.Snapshot("Brazil")
	assert.Empty(t, snap.Items)
	assert.Equal(t, 1, snap.NextPage)
	assert.False(t, snap.Fetching)
}

func TestCollectionsAreIndependent(t *testing.T) {
	acc := NewAccumulator(func(_ context.Context, entity string, page int) ([]string, error) {
		return []string{fmt.Sprintf("%s/%d", entity, page)}, nil
	}, nil)
	ctx := context.Background()

	_, err := acc.RequestNextPage(ctx, "Spain")
	require.NoError(t, err)
	_, err = acc.RequestNextPage(ctx, "Italy")
	require.NoError(t, err)

	acc.Reset("Spain")

	assert.Empty(t, acc.Snapshot("Spain").Items)
	assert.Equal(t, []string{"Italy/1"}, acc.Snapshot("Italy").Items)
}

func TestDiscard(t *testing.T) {
	acc := NewAccumulator(func(_ context.Context, _ string, _ int) ([]string, error) {
		return []string{"x"}, nil
	}, nil)

	_, err := acc.RequestNextPage(context.Background(), "Oman")
	require.NoError(t, err)
	require.Equal(t, 1, acc.Len())

	acc.Discard("Oman")

	assert.Equal(t, 0, acc.Len())
	assert.Equal(t, 1, acc.Snapshot("Oman").NextPage)
}

func TestSnapshotIsACopy(t *testing.T) {
	acc := NewAccumulator(func(_ context.Context, _ string, _ int) ([]string, error) {
		return []string{"x"}, nil
	}, nil)

	_, err := acc.RequestNextPage(context.Background(), "Peru")
	require.NoError(t, err)

	snap := acc.Snapshot("Peru")
	snap.Items[0] = "mutated"

	assert.Equal(t, "x", acc.Snapshot("Peru").Items[0])
}
