package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-polycontent/internal/logging"
	"github.com/goliatone/go-polycontent/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger := logging.ModuleLogger(provider, "polycontent.content").WithContext(ctx)

	logger.Info("content.rollback.success", "content_id", "c1", "version_id", "ver_1")

	got := strings.TrimSpace(buf.String())
	want := "2025-02-03T10:00:00Z INFO content.rollback.success content_id=c1 logger=polycontent.content module=polycontent.content request_id=req-1 version_id=ver_1"
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	level := console.ParseLevel("warn")
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &level})

	logger := provider.GetLogger("polycontent.test")
	logger.Info("skipped")
	logger.Error("kept", "error", errors.New("boom boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `error="boom boom"`) {
		t.Fatalf("expected quoted error, got %s", lines[0])
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if console.ParseLevel("verbose") != console.LevelInfo {
		t.Fatalf("expected info fallback")
	}
	if console.ParseLevel("TRACE") != console.LevelTrace {
		t.Fatalf("expected trace")
	}
}
