package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFromContextAddsIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { SetLogger(nil) })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "u1")
	LoggerFromContext(ctx).Infow("hello", "k", "v")
	LoggerFromContext(context.Background()).Infow("bare")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["user_id"] != "u1" || fields["k"] != "v" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Fatalf("bare context should not carry a request id")
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Fatalf("request id not stored")
	}
}

func TestInitModes(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	for _, mode := range []string{"prod", "dev", ""} {
		if err := Init(mode, ""); err != nil {
			t.Fatalf("Init(%q): %v", mode, err)
		}
	}
}

func TestInitWritesLogFile(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	path := filepath.Join(t.TempDir(), "paceful.log")

	if err := Init("prod", path); err != nil {
		t.Fatal(err)
	}
	Logger().Infow("to file", "k", "v")
	Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("log file is empty")
	}
}
