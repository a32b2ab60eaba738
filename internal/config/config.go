package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved runtime configuration for pricewatch.
type Config struct {
	APIURL          string
	Pages           int
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	AutoFetch       bool
	TokenFile       string
	Token           string // only ever set from the environment
	LogFile         string
	LogLevel        string
	PriceSymbol     string
}

const (
	defaultConfigPath     = "~/.config/pricewatch/config.toml"
	defaultTokenFile      = "~/.config/pricewatch/token"
	defaultEnvFile        = ".env"
	defaultLogFile        = "~/.local/state/pricewatch/pricewatch.log"
	defaultAPIURL         = "http://127.0.0.1:8000"
	defaultPages          = 3
	maxPages              = 10
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "info"
	defaultPriceSymbol    = "$"
)

type fileConfig struct {
	APIURL                string `toml:"api_url"`
	Pages                 int    `toml:"pages"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	RefreshSeconds        int    `toml:"refresh_seconds"`
	AutoFetch             *bool  `toml:"auto_fetch"`
	TokenFile             string `toml:"token_file"`
	LogFile               string `toml:"log_file"`
	LogLevel              string `toml:"log_level"`
	PriceSymbol           string `toml:"price_symbol"`
}

type envConfig struct {
	APIURL   string `env:"PRICEWATCH_API_URL"`
	Pages    int    `env:"PRICEWATCH_PAGES"`
	Token    string `env:"PRICEWATCH_TOKEN"`
	LogLevel string `env:"PRICEWATCH_LOG_LEVEL"`
	LogFile  string `env:"PRICEWATCH_LOG_FILE"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		Pages:          defaultPages,
		RequestTimeout: defaultRequestTimeout,
		AutoFetch:      true,
		TokenFile:      mustExpand(defaultTokenFile),
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		PriceSymbol:    defaultPriceSymbol,
	}
}

// Load reads the TOML config at path (or the default location), then
// applies PRICEWATCH_* environment overrides. A missing file is not an
// error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	cfg.applyFile(raw)

	var overrides envConfig
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyEnv(overrides)

	cfg.normalize()
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment without overriding variables that are already set. A blank
// path means ./.env, which may be absent; an explicit path must exist.
func LoadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return raw, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return raw, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func (c *Config) applyFile(raw fileConfig) {
	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if raw.Pages != 0 {
		c.Pages = raw.Pages
	}
	if raw.RequestTimeoutSeconds > 0 {
		c.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.RefreshSeconds > 0 {
		c.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second
	}
	if raw.AutoFetch != nil {
		c.AutoFetch = *raw.AutoFetch
	}
	if v := strings.TrimSpace(raw.TokenFile); v != "" {
		c.TokenFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(raw.PriceSymbol); v != "" {
		c.PriceSymbol = v
	}
}

func (c *Config) applyEnv(o envConfig) {
	if v := strings.TrimSpace(o.APIURL); v != "" {
		c.APIURL = v
	}
	if o.Pages != 0 {
		c.Pages = o.Pages
	}
	c.Token = strings.TrimSpace(o.Token)
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(o.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
}

func (c *Config) normalize() {
	if c.Pages < 1 {
		c.Pages = 1
	}
	if c.Pages > maxPages {
		c.Pages = maxPages
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}
