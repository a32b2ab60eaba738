package search

import "context"

// Request is the handle for one dispatched intent.
type Request struct {
	Intent Intent
	Seq    uint64
	Query  string

	done chan struct{}
	err  error
}

func newRequest(intent Intent, seq uint64, query string) *Request {
	return &Request{
		Intent: intent,
		Seq:    seq,
		Query:  query,
		done:   make(chan struct{}),
	}
}

// Done is closed once the request has settled.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Err reports the outcome after Done is closed: nil on success, a *Failure
// when the failure was applied to State, or ErrSuperseded when the result
// was discarded. It returns nil while the request is still in flight.
func (r *Request) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the request settles or ctx ends.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Request) finish(err error) {
	r.err = err
	close(r.done)
}
