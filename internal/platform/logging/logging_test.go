package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"studydash/internal/platform/config"
	"studydash/internal/platform/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	if lvl, err := logging.ParseLevel(""); err != nil || lvl != zerolog.InfoLevel {
		t.Fatalf("empty level should default to info, got %v %v", lvl, err)
	}
	if lvl, err := logging.ParseLevel(" DEBUG "); err != nil || lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v %v", lvl, err)
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Fatalf("unknown level must fail")
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "studydash.log")
	closer, err := logging.Setup(config.Log{Level: "info", File: path}, true)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info().Str("component", "test").Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"component":"test"`) || !strings.Contains(string(raw), `"message":"hello"`) {
		t.Fatalf("unexpected log contents: %s", raw)
	}
}
