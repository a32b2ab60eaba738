package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PRICEWATCH_API_URL",
		"PRICEWATCH_PAGES",
		"PRICEWATCH_TOKEN",
		"PRICEWATCH_LOG_LEVEL",
		"PRICEWATCH_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.Pages != defaultPages {
		t.Fatalf("Pages = %d, want %d", cfg.Pages, defaultPages)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.RefreshInterval != 0 {
		t.Fatalf("RefreshInterval = %v, want disabled", cfg.RefreshInterval)
	}
	if !cfg.AutoFetch {
		t.Fatalf("AutoFetch = false, want true")
	}
	if cfg.PriceSymbol != "$" {
		t.Fatalf("PriceSymbol = %q, want $", cfg.PriceSymbol)
	}

	wantLog, err := ExpandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("ExpandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if !strings.HasPrefix(cfg.TokenFile, home) {
		t.Fatalf("TokenFile = %q, want it under HOME %q", cfg.TokenFile, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := writeConfig(t, `
api_url = "  https://prices.example.com  "
pages = 5
request_timeout_seconds = 3
refresh_seconds = 30
auto_fetch = false
token_file = "  ~/tokens/pw  "
log_level = "DEBUG"
price_symbol = "€"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://prices.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Pages != 5 {
		t.Fatalf("Pages = %d, want 5", cfg.Pages)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Fatalf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.AutoFetch {
		t.Fatalf("AutoFetch = true, want false")
	}
	if cfg.TokenFile != filepath.Join(home, "tokens/pw") {
		t.Fatalf("TokenFile = %q, want it under HOME", cfg.TokenFile)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.PriceSymbol != "€" {
		t.Fatalf("PriceSymbol = %q, want €", cfg.PriceSymbol)
	}
}

func TestLoad_ClampsPages(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cases := map[string]int{
		"pages = 50": maxPages,
		"pages = -4": 1,
		"pages = 0":  defaultPages,
	}
	for body, want := range cases {
		cfg, err := Load(writeConfig(t, body))
		if err != nil {
			t.Fatalf("Load(%q) returned error: %v", body, err)
		}
		if cfg.Pages != want {
			t.Fatalf("Load(%q).Pages = %d, want %d", body, cfg.Pages, want)
		}
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)
	t.Setenv("PRICEWATCH_API_URL", "http://10.0.0.5:9000")
	t.Setenv("PRICEWATCH_PAGES", "2")
	t.Setenv("PRICEWATCH_TOKEN", "  secret  ")
	t.Setenv("PRICEWATCH_LOG_LEVEL", "warn")
	t.Setenv("PRICEWATCH_LOG_FILE", "~/pw.log")

	cfg, err := Load(writeConfig(t, `
api_url = "http://file:8000"
pages = 8
log_level = "debug"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.5:9000" {
		t.Fatalf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", cfg.Pages)
	}
	if cfg.Token != "secret" {
		t.Fatalf("Token = %q, want secret", cfg.Token)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.LogFile != filepath.Join(home, "pw.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoad_InvalidEnvironmentFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv("PRICEWATCH_PAGES", "many")

	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Fatalf("Load returned nil error, want env parse error")
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `api_url = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoadEnvFile_DoesNotOverrideExisting(t *testing.T) {
	t.Setenv("PRICEWATCH_API_URL", "http://already-set")
	t.Setenv("PRICEWATCH_TOKEN", "")
	os.Unsetenv("PRICEWATCH_TOKEN")

	path := filepath.Join(t.TempDir(), ".env")
	body := "PRICEWATCH_API_URL=http://from-dotenv\nPRICEWATCH_TOKEN=dotenv-token\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
	if got := os.Getenv("PRICEWATCH_API_URL"); got != "http://already-set" {
		t.Fatalf("PRICEWATCH_API_URL = %q, want existing value kept", got)
	}
	if got := os.Getenv("PRICEWATCH_TOKEN"); got != "dotenv-token" {
		t.Fatalf("PRICEWATCH_TOKEN = %q, want dotenv-token", got)
	}
}

func TestLoadEnvFile_MissingDefaultIsIgnored(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
}

func TestLoadEnvFile_MissingExplicitPathErrors(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatalf("LoadEnvFile returned nil error for missing explicit path")
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}
