package search

import (
	"time"

	"github.com/five82/pricewatch/internal/pricewatch"
)

// Phase is the observable lifecycle position of the container.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is the single view of search results handed to renderers.
type State struct {
	Products    []pricewatch.Product
	Loading     bool
	Error       string
	Phase       Phase
	Query       string // last query submitted through StartSearch or SearchAndFetch
	LastUpdated time.Time
}

// HasError reports whether the last settled request failed.
func (s State) HasError() bool {
	return s.Error != ""
}

// The transitions below are pure: each takes the current state and returns
// the next one. The container serialises them under its lock.

func pending(s State, query string, now time.Time) State {
	s.Loading = true
	s.Error = ""
	s.Phase = PhasePending
	if query != "" {
		s.Query = query
	}
	s.LastUpdated = now
	return s
}

// searchSucceeded settles a trigger-only request. The job result is not
// product data, so products stay as they were.
func searchSucceeded(s State, now time.Time) State {
	s.Loading = false
	s.Error = ""
	s.Phase = PhaseSucceeded
	s.LastUpdated = now
	return s
}

// fetchSucceeded replaces the product list wholesale.
func fetchSucceeded(s State, products []pricewatch.Product, now time.Time) State {
	s.Products = cloneProducts(products)
	if s.Products == nil {
		s.Products = []pricewatch.Product{}
	}
	s.Loading = false
	s.Error = ""
	s.Phase = PhaseSucceeded
	s.LastUpdated = now
	return s
}

// failed records msg and leaves the previous products in place.
func failed(s State, msg string, now time.Time) State {
	s.Loading = false
	s.Error = msg
	s.Phase = PhaseFailed
	s.LastUpdated = now
	return s
}

// cleared empties results and error without touching Loading.
func cleared(s State) State {
	s.Products = []pricewatch.Product{}
	s.Error = ""
	if !s.Loading {
		s.Phase = PhaseIdle
	}
	return s
}

func cloneState(s State) State {
	dup := s
	dup.Products = cloneProducts(s.Products)
	if s.Products != nil && dup.Products == nil {
		dup.Products = []pricewatch.Product{}
	}
	return dup
}

func cloneProducts(items []pricewatch.Product) []pricewatch.Product {
	if len(items) == 0 {
		return nil
	}
	dup := make([]pricewatch.Product, len(items))
	for i, p := range items {
		dup[i] = p
		if len(p.Prices) > 0 {
			dup[i].Prices = make([]pricewatch.PricePoint, len(p.Prices))
			copy(dup[i].Prices, p.Prices)
		}
	}
	return dup
}
