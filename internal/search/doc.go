// Package search owns the search result state and the request lifecycle
// that mutates it.
//
// # Overview
//
// A Container holds one State: the product list, a loading flag, the last
// error message, and the lifecycle Phase. Renderers read it with Snapshot
// and never mutate it. All changes go through the intents:
//
//   - StartSearch: trigger a backend scrape job; products are untouched
//   - FetchProducts: reload the product collection wholesale
//   - SearchAndFetch: trigger, then fetch, as one request
//   - ClearResults: drop products and error locally
//
// # Lifecycle
//
// Each asynchronous intent moves the state through
//
//	Pending → Succeeded
//	Pending → Failed
//
// Pending is applied before the intent returns, so the UI shows the spinner
// in the same frame as the keypress. The previous error is cleared at that
// point. A failure sets Error and keeps the last good products.
//
// # Ordering
//
// Every dispatch takes the next value of one sequence shared by all intents.
// When a request settles, its outcome is applied only if its sequence is
// still the newest. Otherwise the outcome is dropped, logged at debug, and
// the Request reports ErrSuperseded. The consequence is that Loading stays
// true until the newest request settles, and the displayed products always
// come from the newest completed fetch.
//
// # Errors
//
// NormalizeError turns any failure into the one string shown to the user:
// the backend's message when an *pricewatch.APIError carries one, otherwise
// a fixed fallback per intent. Raw transport errors are logged, not shown.
package search
