// Package prefs persists pricewatch UI preferences.
// Preferences are stored in ~/.config/pricewatch/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/pricewatch/internal/config"
)

// Prefs holds what the UI remembers between runs.
type Prefs struct {
	Theme     string `toml:"theme"`
	LastQuery string `toml:"last_query,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/pricewatch/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Default returns the preferences used on first run.
func Default() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load reads preferences from path, or the default location when path is
// blank. It always returns usable preferences: on any read or parse problem
// the defaults come back together with the error so the caller can log it.
func Load(path string) (Prefs, error) {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, err
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read prefs: %w", err)
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), fmt.Errorf("parse prefs: %w", err)
	}

	prefs.Theme = strings.TrimSpace(prefs.Theme)
	if prefs.Theme == "" {
		prefs.Theme = defaultTheme
	}
	prefs.LastQuery = strings.TrimSpace(prefs.LastQuery)

	return prefs, nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
