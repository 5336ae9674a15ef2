package logger

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("partner", "Mark").Msg("draws imported")

	output := buf.String()
	if !strings.Contains(output, "draws imported") {
		t.Errorf("Expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, `"partner":"Mark"`) {
		t.Errorf("Expected output to contain partner field, got: %s", output)
	}
}

func TestWithLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithLevel(NewWithWriter(buf), "warn")

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info should be filtered at warn level, got: %s", output)
	}
	if !strings.Contains(output, "shown") {
		t.Errorf("warn should pass, got: %s", output)
	}
}

func TestWithLevelUnknownFallsBackToInfo(t *testing.T) {
	log := WithLevel(NewWithWriter(&bytes.Buffer{}), "loud")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", log.GetLevel())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	retrieved := FromContext(ctx)
	retrieved.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContextDefaultIsDisabled(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("level = %v, want disabled", log.GetLevel())
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "liquidity.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	log := NewWithWriter(f)
	log.Info().Msg("hello")
}
