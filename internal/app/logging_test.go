package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "pricewatch.log")

	logger, closer, err := newLogger(path, "warn")
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("intent", "fetch products").Msg("request failed")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"request failed"`) || !strings.Contains(out, `"intent":"fetch products"`) {
		t.Fatalf("log output = %s", out)
	}
}

func TestNewLogger_EmptyPathDiscards(t *testing.T) {
	logger, closer, err := newLogger("  ", "debug")
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	logger.Info().Msg("nowhere")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
