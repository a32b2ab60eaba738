// Package pricewatch provides an HTTP client for the price tracker API.
//
// # Overview
//
// This package defines the typed client for the price tracker backend. It
// handles HTTP communication, bearer token injection, JSON decoding and
// validation of product payloads, and the structured error contract the UI
// relies on.
//
// # Architecture
//
// The package is split into four files:
//
//   - client.go: resty-based client, request hooks, and the remote operations
//   - types.go: Product and PricePoint mirroring the backend schema
//   - errors.go: APIError and the backend's error payload
//   - validate.go: schema validation applied to every fetched product
//
// # Client Usage
//
//	client, err := pricewatch.NewClient(pricewatch.Options{
//		BaseURL: "http://127.0.0.1:8000",
//		Pages:   3,
//		Tokens:  sess,
//		Logger:  logger,
//	})
//	if err != nil {
//		return err
//	}
//
//	// Start a scrape job; results arrive later.
//	if _, err := client.TriggerSearch(ctx, "shoes"); err != nil {
//		return err
//	}
//
//	// Read the product collection.
//	products, err := client.FetchProducts(ctx)
//
// # API Endpoints
//
// All routes live under /api/v1:
//
//   - POST /products/search?query=<q>&pages=<n>: start a scrape job (202)
//   - GET /products/all: full product collection with price histories
//   - POST /auth/login: exchange credentials for an access token
//
// # Request Handling
//
// Every request passes through the same OnBeforeRequest hook, which:
//   - Sets a fresh X-Request-ID (UUID) for log correlation
//   - Attaches Authorization: Bearer <token> when the TokenSource has one
//
// Requests are single attempts. The client never retries.
//
// # Error Handling
//
// Non-2xx responses become *APIError. Its Message is taken from the error
// body's "message" field, falling back to a string "detail" field, and is
// empty when neither exists. Network and decode failures are returned
// wrapped with the operation name, for example:
//
//   - "fetch products: execute request: dial tcp 127.0.0.1:8000: connection refused"
//   - "trigger search: api POST /api/v1/products/search returned status 429: rate limited"
//
// # Validation
//
// Decoded products are validated with go-playground/validator. A product
// without a positive id, a price entry without a site, or a negative price
// is dropped and logged at warn level. The rest of the collection is
// returned unchanged and in order.
//
// # Display Rules
//
// Product carries the helpers shared by every renderer:
//
//   - LatestPrice: the last price entry, never the minimum or maximum
//   - DisplayTitle: truncated to 30 runes with a trailing "..."
//   - Link: the listing URL or "#" when missing
//   - HasImage: false suppresses the thumbnail entirely
package pricewatch
