package search

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/pricewatch/internal/pricewatch"
)

// API is the pair of remote operations the container sequences.
type API interface {
	TriggerSearch(ctx context.Context, query string) (pricewatch.SearchJob, error)
	FetchProducts(ctx context.Context) ([]pricewatch.Product, error)
}

var _ API = (*pricewatch.Client)(nil)

// Intent names a request dispatched to the container.
type Intent int

const (
	IntentStartSearch Intent = iota + 1
	IntentFetchProducts
	IntentSearchAndFetch
)

func (i Intent) String() string {
	switch i {
	case IntentStartSearch:
		return "start search"
	case IntentFetchProducts:
		return "fetch products"
	case IntentSearchAndFetch:
		return "search and fetch"
	default:
		return "unknown"
	}
}

// Option customises a Container.
type Option func(*Container)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) { c.log = logger }
}

// WithClock overrides the time source used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// Container owns the search State and is its only mutator. Every intent
// takes a sequence number; a result is applied only when its number is
// still the latest issued, so a slow response can never overwrite a newer
// one.
type Container struct {
	api API
	log zerolog.Logger
	now func() time.Time

	mu    sync.RWMutex
	state State
	seq   uint64
}

// New creates a container with an empty Idle state.
func New(api API, opts ...Option) *Container {
	c := &Container{
		api: api,
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneState(c.state)
}

// StartSearch asks the backend to start a scrape job for query. The state
// is Pending when this returns. Success does not change products; follow
// up with FetchProducts, or use SearchAndFetch instead.
func (c *Container) StartSearch(ctx context.Context, query string) *Request {
	return c.dispatch(ctx, IntentStartSearch, query, c.runStartSearch)
}

// FetchProducts reloads the product collection. The state is Pending when
// this returns; on success the products are replaced wholesale.
func (c *Container) FetchProducts(ctx context.Context) *Request {
	return c.dispatch(ctx, IntentFetchProducts, "", c.runFetchProducts)
}

// SearchAndFetch triggers a search and then retrieves the product
// collection as one request with one lifecycle. If a newer request is
// issued while the trigger is in flight the fetch step is skipped.
func (c *Container) SearchAndFetch(ctx context.Context, query string) *Request {
	return c.dispatch(ctx, IntentSearchAndFetch, query, c.runSearchAndFetch)
}

// ClearResults empties products and error. Loading is left alone, so an
// in-flight request still settles normally and may repopulate products.
func (c *Container) ClearResults() {
	c.mu.Lock()
	c.state = cleared(c.state)
	c.mu.Unlock()
	c.log.Debug().Msg("results cleared")
}

func (c *Container) dispatch(ctx context.Context, intent Intent, query string, run func(context.Context, *Request) error) *Request {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	c.seq++
	req := newRequest(intent, c.seq, query)
	c.state = pending(c.state, query, c.now())
	c.mu.Unlock()

	c.log.Info().
		Str("intent", intent.String()).
		Uint64("seq", req.Seq).
		Str("query", query).
		Msg("request pending")

	go func() {
		req.finish(run(ctx, req))
	}()
	return req
}

func (c *Container) runStartSearch(ctx context.Context, req *Request) error {
	if _, err := c.api.TriggerSearch(ctx, req.Query); err != nil {
		return c.fail(req, err, FallbackStartSearch)
	}
	return c.settle(req, func(s State) State {
		return searchSucceeded(s, c.now())
	})
}

func (c *Container) runFetchProducts(ctx context.Context, req *Request) error {
	products, err := c.api.FetchProducts(ctx)
	if err != nil {
		return c.fail(req, err, FallbackFetchProducts)
	}
	return c.settle(req, func(s State) State {
		return fetchSucceeded(s, products, c.now())
	})
}

func (c *Container) runSearchAndFetch(ctx context.Context, req *Request) error {
	if _, err := c.api.TriggerSearch(ctx, req.Query); err != nil {
		return c.fail(req, err, FallbackStartSearch)
	}
	if !c.isLatest(req.Seq) {
		c.logStale(req, "search triggered")
		return ErrSuperseded
	}
	products, err := c.api.FetchProducts(ctx)
	if err != nil {
		return c.fail(req, err, FallbackFetchProducts)
	}
	return c.settle(req, func(s State) State {
		return fetchSucceeded(s, products, c.now())
	})
}

func (c *Container) fail(req *Request, err error, fallback string) error {
	msg := NormalizeError(err, fallback)
	c.log.Warn().
		Err(err).
		Str("intent", req.Intent.String()).
		Uint64("seq", req.Seq).
		Str("message", msg).
		Msg("request failed")

	if settleErr := c.settle(req, func(s State) State {
		return failed(s, msg, c.now())
	}); settleErr != nil {
		return settleErr
	}
	return &Failure{Intent: req.Intent, Message: msg, Err: err}
}

// settle applies next to the state when req is still the latest request and
// returns ErrSuperseded otherwise.
func (c *Container) settle(req *Request, next func(State) State) error {
	c.mu.Lock()
	latest := req.Seq == c.seq
	if latest {
		c.state = next(c.state)
	}
	phase := c.state.Phase
	c.mu.Unlock()

	if !latest {
		c.logStale(req, "response arrived")
		return ErrSuperseded
	}
	c.log.Info().
		Str("intent", req.Intent.String()).
		Uint64("seq", req.Seq).
		Str("phase", phase.String()).
		Msg("request settled")
	return nil
}

func (c *Container) isLatest(seq uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return seq == c.seq
}

func (c *Container) logStale(req *Request, step string) {
	c.log.Debug().
		Str("intent", req.Intent.String()).
		Uint64("seq", req.Seq).
		Str("step", step).
		Msg("discarding stale response")
}
