package xlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandleWritesToFileAndMirrorsWarnings(t *testing.T) {
	var file, stderr bytes.Buffer
	h := NewHandler(&file, &stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(h)

	logger.Debug("resolving include", "path", "lib.s")
	logger.Warn("symbol redefined", "name", "COUNT")

	if !strings.Contains(file.String(), "resolving include") {
		t.Fatalf("expected debug line in file output, got %q", file.String())
	}
	if !strings.Contains(file.String(), "symbol redefined") {
		t.Fatalf("expected warning line in file output, got %q", file.String())
	}
	if strings.Contains(stderr.String(), "resolving include") {
		t.Fatalf("debug-level record should not mirror to stderr, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "symbol redefined") {
		t.Fatalf("expected warning mirrored to stderr, got %q", stderr.String())
	}
}

func TestNilFileHandlerStillMirrorsWarnings(t *testing.T) {
	var stderr bytes.Buffer
	h := NewHandler(nil, &stderr, nil)
	logger := slog.New(h)

	logger.Debug("not shown anywhere")
	logger.Error("fatal condition")

	if stderr.Len() == 0 {
		t.Fatal("expected error-level record to reach stderr even with no log file")
	}
	if !strings.Contains(stderr.String(), "fatal condition") {
		t.Fatalf("got %q", stderr.String())
	}
}
