package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/pricewatch/internal/pricewatch"
)

type fetchResult struct {
	products []pricewatch.Product
	err      error
}

// fakeAPI answers each call from the configured funcs. A nil func succeeds
// immediately.
type fakeAPI struct {
	trigger func(ctx context.Context, query string) (pricewatch.SearchJob, error)
	fetch   func(ctx context.Context) ([]pricewatch.Product, error)

	triggerCalls atomic.Int32
	fetchCalls   atomic.Int32

	mu      sync.Mutex
	queries []string
}

func (f *fakeAPI) TriggerSearch(ctx context.Context, query string) (pricewatch.SearchJob, error) {
	f.triggerCalls.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.trigger == nil {
		return pricewatch.SearchJob{Status: "accepted"}, nil
	}
	return f.trigger(ctx, query)
}

func (f *fakeAPI) FetchProducts(ctx context.Context) ([]pricewatch.Product, error) {
	f.fetchCalls.Add(1)
	if f.fetch == nil {
		return []pricewatch.Product{}, nil
	}
	return f.fetch(ctx)
}

func (f *fakeAPI) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// gatedFetches returns a fetch func whose nth call blocks until gates[n]
// receives a result, and a counter of calls that have taken a gate.
func gatedFetches(n int) ([]chan fetchResult, func(context.Context) ([]pricewatch.Product, error), func() int32) {
	gates := make([]chan fetchResult, n)
	for i := range gates {
		gates[i] = make(chan fetchResult, 1)
	}
	var next atomic.Int32
	fn := func(ctx context.Context) ([]pricewatch.Product, error) {
		idx := int(next.Add(1)) - 1
		select {
		case r := <-gates[idx]:
			return r.products, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return gates, fn, next.Load
}

func waitFor(t *testing.T, req *Request) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := req.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "request %d did not settle", req.Seq)
	return err
}

func TestContainer_InitialStateIsIdle(t *testing.T) {
	c := New(&fakeAPI{})
	snap := c.Snapshot()

	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	assert.Empty(t, snap.Products)
}

func TestContainer_PendingIsVisibleBeforeReturn(t *testing.T) {
	block := make(chan struct{})
	api := &fakeAPI{
		trigger: func(ctx context.Context, _ string) (pricewatch.SearchJob, error) {
			<-block
			return pricewatch.SearchJob{}, nil
		},
	}
	c := New(api)

	req := c.StartSearch(context.Background(), "shoes")
	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, PhasePending, snap.Phase)
	assert.Equal(t, "shoes", snap.Query)
	assert.Nil(t, req.Err(), "unsettled request reports nil")

	close(block)
	require.NoError(t, waitFor(t, req))
	assert.False(t, c.Snapshot().Loading)
}

func TestContainer_SearchAndFetchSuccess(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) {
			return sampleProducts(1, 2), nil
		},
	}
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	c := New(api, WithClock(func() time.Time { return now }))

	req := c.SearchAndFetch(context.Background(), "desk lamp")
	require.NoError(t, waitFor(t, req))

	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	assert.Equal(t, PhaseSucceeded, snap.Phase)
	assert.Len(t, snap.Products, 2)
	assert.Equal(t, now, snap.LastUpdated)
	assert.Equal(t, []string{"desk lamp"}, api.Queries())
	assert.EqualValues(t, 1, api.triggerCalls.Load())
	assert.EqualValues(t, 1, api.fetchCalls.Load())
	assert.Equal(t, IntentSearchAndFetch, req.Intent)
}

func TestContainer_StartSearchDoesNotTouchProducts(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) {
			return sampleProducts(7), nil
		},
	}
	c := New(api)
	require.NoError(t, waitFor(t, c.FetchProducts(context.Background())))

	require.NoError(t, waitFor(t, c.StartSearch(context.Background(), "chair")))

	snap := c.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(7), snap.Products[0].ID)
	assert.Equal(t, PhaseSucceeded, snap.Phase)
	assert.EqualValues(t, 1, api.fetchCalls.Load())
}

func TestContainer_TriggerFailureUsesBackendMessage(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) {
			return sampleProducts(1, 2, 3), nil
		},
	}
	c := New(api)
	require.NoError(t, waitFor(t, c.FetchProducts(context.Background())))

	api.trigger = func(context.Context, string) (pricewatch.SearchJob, error) {
		return pricewatch.SearchJob{}, &pricewatch.APIError{Status: 429, Message: "rate limited"}
	}
	req := c.SearchAndFetch(context.Background(), "x")
	err := waitFor(t, req)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "rate limited", failure.Message)
	assert.Equal(t, IntentSearchAndFetch, failure.Intent)

	var apiErr *pricewatch.APIError
	assert.ErrorAs(t, err, &apiErr)

	snap := c.Snapshot()
	assert.Equal(t, "rate limited", snap.Error)
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Products, 3, "failure keeps the last good products")
	assert.EqualValues(t, 1, api.fetchCalls.Load(), "fetch step skipped after trigger failure")
}

func TestContainer_FetchNetworkErrorUsesFallback(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) {
			return nil, errors.New("fetch products: execute request: dial tcp: connection refused")
		},
	}
	c := New(api)

	err := waitFor(t, c.FetchProducts(context.Background()))
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, FallbackFetchProducts, snap.Error)
	assert.NotContains(t, snap.Error, "dial tcp")
	assert.Empty(t, snap.Products)
}

func TestContainer_SearchAndFetchFetchFailureUsesFetchFallback(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) {
			return nil, &pricewatch.APIError{Status: 500}
		},
	}
	c := New(api)

	require.Error(t, waitFor(t, c.SearchAndFetch(context.Background(), "q")))
	assert.Equal(t, FallbackFetchProducts, c.Snapshot().Error)
}

func TestContainer_NewRequestClearsPreviousError(t *testing.T) {
	block := make(chan struct{})
	fail := true
	api := &fakeAPI{}
	api.trigger = func(context.Context, string) (pricewatch.SearchJob, error) {
		if fail {
			return pricewatch.SearchJob{}, errors.New("boom")
		}
		<-block
		return pricewatch.SearchJob{}, nil
	}
	c := New(api)

	require.Error(t, waitFor(t, c.StartSearch(context.Background(), "a")))
	assert.Equal(t, FallbackStartSearch, c.Snapshot().Error)

	fail = false
	req := c.StartSearch(context.Background(), "b")
	assert.Empty(t, c.Snapshot().Error, "error cleared as soon as the new request is pending")

	close(block)
	require.NoError(t, waitFor(t, req))
}

func TestContainer_OutOfOrderCompletionKeepsNewest(t *testing.T) {
	gates, fetch, started := gatedFetches(2)
	api := &fakeAPI{fetch: fetch}
	c := New(api)
	ctx := context.Background()

	older := c.FetchProducts(ctx)
	require.Eventually(t, func() bool { return started() == 1 }, time.Second, time.Millisecond)
	newer := c.FetchProducts(ctx)
	require.Eventually(t, func() bool { return started() == 2 }, time.Second, time.Millisecond)

	gates[1] <- fetchResult{products: sampleProducts(20, 21)}
	require.NoError(t, waitFor(t, newer))

	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Products, 2)

	gates[0] <- fetchResult{products: sampleProducts(10)}
	assert.ErrorIs(t, waitFor(t, older), ErrSuperseded)

	snap = c.Snapshot()
	require.Len(t, snap.Products, 2, "stale response must not overwrite newer products")
	assert.Equal(t, int64(20), snap.Products[0].ID)
	assert.False(t, snap.Loading)
}

func TestContainer_StaleCompletionLeavesLoading(t *testing.T) {
	gates, fetch, started := gatedFetches(2)
	api := &fakeAPI{fetch: fetch}
	c := New(api)
	ctx := context.Background()

	older := c.FetchProducts(ctx)
	require.Eventually(t, func() bool { return started() == 1 }, time.Second, time.Millisecond)
	newer := c.FetchProducts(ctx)

	gates[0] <- fetchResult{products: sampleProducts(10)}
	assert.ErrorIs(t, waitFor(t, older), ErrSuperseded)

	snap := c.Snapshot()
	assert.True(t, snap.Loading, "newest request is still in flight")
	assert.Empty(t, snap.Products)

	gates[1] <- fetchResult{err: errors.New("boom")}
	var failure *Failure
	require.ErrorAs(t, waitFor(t, newer), &failure)

	snap = c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, FallbackFetchProducts, snap.Error)
}

func TestContainer_SupersededSearchAndFetchSkipsFetch(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{}
	api.trigger = func(ctx context.Context, query string) (pricewatch.SearchJob, error) {
		if query == "slow" {
			<-release
		}
		return pricewatch.SearchJob{}, nil
	}
	c := New(api)
	ctx := context.Background()

	slow := c.SearchAndFetch(ctx, "slow")
	require.Eventually(t, func() bool { return api.triggerCalls.Load() == 1 }, time.Second, time.Millisecond)

	fast := c.StartSearch(ctx, "fast")
	require.NoError(t, waitFor(t, fast))

	close(release)
	assert.ErrorIs(t, waitFor(t, slow), ErrSuperseded)
	assert.EqualValues(t, 0, api.fetchCalls.Load())
	assert.Equal(t, "fast", c.Snapshot().Query)
}

func TestContainer_ClearResults(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) {
			return nil, &pricewatch.APIError{Message: "nope"}
		},
	}
	c := New(api)
	require.Error(t, waitFor(t, c.FetchProducts(context.Background())))
	require.Equal(t, "nope", c.Snapshot().Error)

	c.ClearResults()
	snap := c.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Empty(t, snap.Products)
	assert.Equal(t, PhaseIdle, snap.Phase)
}

func TestContainer_ClearDuringPendingDoesNotCancel(t *testing.T) {
	gates, fetch, _ := gatedFetches(1)
	c := New(&fakeAPI{fetch: fetch})

	req := c.FetchProducts(context.Background())
	c.ClearResults()

	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Products)

	gates[0] <- fetchResult{products: sampleProducts(5)}
	require.NoError(t, waitFor(t, req))
	assert.Len(t, c.Snapshot().Products, 1, "completion after clear repopulates products")
}

func TestContainer_EmptyFetchIsNonNil(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) { return nil, nil },
	}
	c := New(api)
	require.NoError(t, waitFor(t, c.FetchProducts(context.Background())))

	snap := c.Snapshot()
	assert.NotNil(t, snap.Products)
	assert.Empty(t, snap.Products)
	assert.Equal(t, PhaseSucceeded, snap.Phase)
}

func TestContainer_SnapshotIsIsolated(t *testing.T) {
	api := &fakeAPI{
		fetch: func(context.Context) ([]pricewatch.Product, error) { return sampleProducts(1), nil },
	}
	c := New(api)
	require.NoError(t, waitFor(t, c.FetchProducts(context.Background())))

	snap := c.Snapshot()
	snap.Products[0].Title = "mutated"
	snap.Products = append(snap.Products, pricewatch.Product{ID: 99})

	again := c.Snapshot()
	require.Len(t, again.Products, 1)
	assert.Equal(t, "product", again.Products[0].Title)
}

func TestContainer_SequenceIsShared(t *testing.T) {
	c := New(&fakeAPI{})
	ctx := context.Background()

	a := c.StartSearch(ctx, "a")
	b := c.FetchProducts(ctx)
	d := c.SearchAndFetch(ctx, "d")

	assert.Less(t, a.Seq, b.Seq)
	assert.Less(t, b.Seq, d.Seq)
	for _, req := range []*Request{a, b, d} {
		_ = waitFor(t, req)
	}
	assert.False(t, c.Snapshot().Loading)
}

func TestRequest_WaitHonoursContext(t *testing.T) {
	req := newRequest(IntentFetchProducts, 1, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, req.Wait(ctx), context.Canceled)

	req.finish(ErrSuperseded)
	assert.ErrorIs(t, req.Err(), ErrSuperseded)
	<-req.Done()
}

func TestNormalizeError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"api message", &pricewatch.APIError{Status: 400, Message: "bad query"}, "bad query"},
		{"wrapped api message", errors.Join(errors.New("ctx"), &pricewatch.APIError{Message: " padded "}), "padded"},
		{"api without message", &pricewatch.APIError{Status: 502}, "fallback"},
		{"blank message", &pricewatch.APIError{Message: "   "}, "fallback"},
		{"plain error", errors.New("dial tcp: refused"), "fallback"},
		{"nil", nil, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeError(tc.err, "fallback"))
		})
	}
}

func TestFailureError(t *testing.T) {
	inner := errors.New("boom")
	f := &Failure{Intent: IntentStartSearch, Message: FallbackStartSearch, Err: inner}
	assert.Equal(t, "start search: failed to start search", f.Error())
	assert.ErrorIs(t, f, inner)
}

func TestContainer_NonJSONSuccessKeepsProducts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":1,"title":"Lamp","prices":[{"site":"acme","price":19.99}]}]`))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	t.Cleanup(server.Close)

	client, err := pricewatch.NewClient(pricewatch.Options{BaseURL: server.URL})
	require.NoError(t, err)
	c := New(client)

	require.NoError(t, waitFor(t, c.FetchProducts(context.Background())))
	require.Len(t, c.Snapshot().Products, 1)

	require.Error(t, waitFor(t, c.FetchProducts(context.Background())))

	snap := c.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.Equal(t, FallbackFetchProducts, snap.Error)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(1), snap.Products[0].ID)
}
