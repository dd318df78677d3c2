// Package xlog wraps log/slog with a small mutex-guarded handler for the
// assembler's own tracing output (pass numbers, macro expansion, include
// resolution), kept separate from the user-facing diagnostics internal/diag
// renders. Grounded on rcornwell-S370's util/logger package.
package xlog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler is a slog.Handler that writes a short "time level message
// attrs..." line to an optional file, and additionally mirrors
// warning/error-level records to stderr so they're visible even when
// no trace file was given.
type Handler struct {
	stderr io.Writer
	h      slog.Handler
	mu     *sync.Mutex
}

// NewHandler builds a Handler writing to out (may be nil to discard
// trace-level records entirely) and mirroring Warn/Error to stderr.
func NewHandler(out io.Writer, stderr io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	var inner slog.Handler
	if out != nil {
		inner = slog.NewTextHandler(out, opts)
	}
	return &Handler{stderr: stderr, h: inner, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.h != nil {
		return h.h.Enabled(ctx, level)
	}
	return level >= slog.LevelWarn
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	if h.h != nil {
		next.h = h.h.WithAttrs(attrs)
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	next := *h
	if h.h != nil {
		next.h = h.h.WithGroup(name)
	}
	return &next
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.h != nil {
		if err := h.h.Handle(ctx, r); err != nil {
			return err
		}
	}

	if h.stderr == nil || r.Level < slog.LevelWarn {
		return nil
	}
	parts := []string{r.Time.Format("15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})
	_, err := io.WriteString(h.stderr, strings.Join(parts, " ")+"\n")
	return err
}
