// Package app is the composition root for pricewatch.
//
// # Overview
//
// Run wires configuration, logging, the bearer-token session, the API client,
// the search container and the TUI, then blocks until the user quits or the
// context is cancelled. Login performs the one-shot credential exchange used
// by `pricewatch -login`.
//
// # Components
//
//   - app.go: Run, Login, and the shared bootstrap
//   - logging.go: zerolog setup writing JSON lines to the configured log file
//   - refresher.go: optional background product reload
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.LoadEnvFile()  .env into the environment
//	       ├─────> config.Load()         TOML + PRICEWATCH_* overrides
//	       ├─────> newLogger()           JSON log file
//	       ├─────> session.Open()        bearer token
//	       ├─────> pricewatch.NewClient()
//	       ├─────> search.New()          the one state container
//	       ├─────> StartRefresher()      only when refresh_seconds > 0
//	       └─────> ui.Run()              blocks
//
// # Refresh Behavior
//
// Starting a search only queues a scrape job on the backend; its products
// arrive later. With refresh_seconds set, the refresher dispatches
// FetchProducts on that cadence (never faster than every 5 seconds) so new
// results appear without pressing r. A tick is skipped while any request is
// in flight. Failures land in the search state like any other fetch; the
// refresher does not retry early or back off.
//
// # Error Handling
//
// Fatal (returned from Run):
//   - Unparsable config file or PRICEWATCH_* value
//   - Log file cannot be created
//   - Unreadable token file
//   - Invalid api_url
//
// Everything after startup is recoverable and surfaces in the UI header.
// The backend is not probed before the UI starts; an unreachable API shows
// up as the first request's error message.
package app
