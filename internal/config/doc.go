// Package config loads pricewatch's runtime configuration.
//
// # Resolution Order
//
// Load builds a Config in layers, later layers winning:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file at the given path, or ~/.config/pricewatch/config.toml
//  3. PRICEWATCH_* environment variables
//
// A missing config file is not an error. A file that exists but fails to
// parse is. LoadEnvFile can be called first to populate the environment from
// a .env file; it never overrides variables that are already set.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000"
//	pages = 3                    # clamped to 1..10
//	request_timeout_seconds = 10
//	refresh_seconds = 0          # 0 disables background refresh
//	auto_fetch = true            # Enter runs search then fetch
//	token_file = "~/.config/pricewatch/token"
//	log_file = "~/.local/state/pricewatch/pricewatch.log"
//	log_level = "info"
//	price_symbol = "$"
//
// Every key is optional. Paths get tilde expansion.
//
// # Environment
//
//   - PRICEWATCH_API_URL
//   - PRICEWATCH_PAGES
//   - PRICEWATCH_TOKEN: bearer token, takes precedence over token_file
//   - PRICEWATCH_LOG_LEVEL
//   - PRICEWATCH_LOG_FILE
package config
