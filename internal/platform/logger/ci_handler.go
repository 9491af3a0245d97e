package logger

import (
	"context"
	"log/slog"
	"sort"
)

// CIHandler is a slog.Handler that adds CI run metadata to every record so
// log lines from parallel CI jobs can be told apart.
type CIHandler struct {
	handler slog.Handler
	attrs   []slog.Attr
}

// NewCIHandler wraps handler, adding one string attribute per metadata entry.
func NewCIHandler(handler slog.Handler, metadata map[string]string) *CIHandler {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, metadata[k]))
	}
	return &CIHandler{handler: handler, attrs: attrs}
}

// Enabled implements the slog.Handler interface.
func (h *CIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface.
func (h *CIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CIHandler{handler: h.handler.WithAttrs(attrs), attrs: h.attrs}
}

// WithGroup implements the slog.Handler interface.
func (h *CIHandler) WithGroup(name string) slog.Handler {
	return &CIHandler{handler: h.handler.WithGroup(name), attrs: h.attrs}
}

// Handle implements the slog.Handler interface.
func (h *CIHandler) Handle(ctx context.Context, record slog.Record) error {
	enhanced := record.Clone()
	enhanced.AddAttrs(h.attrs...)
	return h.handler.Handle(ctx, enhanced)
}
