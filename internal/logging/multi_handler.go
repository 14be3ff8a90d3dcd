package logging

import (
	"context"
	"log/slog"
)

// MultiHandler fans each record out to a console handler and the log file
// handler. Every handler applies its own level.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler flattens nested MultiHandlers so WithAttrs and WithGroup
// chains stay one level deep.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	var flat []slog.Handler
	for _, h := range handlers {
		if m, ok := h.(*MultiHandler); ok {
			flat = append(flat, m.handlers...)
			continue
		}
		flat = append(flat, h)
	}
	return &MultiHandler{handlers: flat}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes each enabled handler its own clone of r. A failing sink does
// not stop the others; the first error is returned.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = fn(h)
	}
	return &MultiHandler{handlers: out}
}
