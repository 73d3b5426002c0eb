// Package log wires request-scoped attributes into slog: attrs stored in
// a context by ContextAttrs are added to every record logged with that
// context, so the activation id set once per request shows up in all logs
// the request produces.
package log

import (
	"context"
	"io"
	"log/slog"
)

type attrsKeyT struct{}

var attrsKey attrsKeyT

// ContextHandler is a slog.Handler decorating another handler with the
// attrs carried by the record's context.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if a, ok := ctx.Value(attrsKey).([]slog.Attr); ok {
		r.AddAttrs(a...)
	}
	return h.Handler.Handle(ctx, r)
}

// ContextAttrs returns a context carrying the given attrs on top of any
// already present.
func ContextAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	a, ok := ctx.Value(attrsKey).([]slog.Attr)
	if !ok || a == nil {
		a = make([]slog.Attr, 0, len(attrs))
	}
	a = append(a, attrs...)
	return context.WithValue(ctx, attrsKey, a)
}

// New builds a JSON logger writing to w, debug-level when verbose.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	})
	return slog.New(ContextHandler{Handler: base})
}
