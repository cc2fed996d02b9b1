// Package logtest captures slog records so tests can assert on emitted
// diagnostics.
package logtest

import (
	"context"
	"log/slog"
	"sync"
)

// Record is a captured log entry with its attributes flattened.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type sink struct {
	mu      sync.Mutex
	records []Record
}

// Handler is an slog.Handler that stores every record in memory.
type Handler struct {
	sink  *sink
	attrs []slog.Attr
	group string
}

// New returns a logger writing into a fresh capture handler.
func New() (*slog.Logger, *Handler) {
	h := &Handler{sink: &sink{}}
	return slog.New(h), h
}

func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	rec := Record{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any, r.NumAttrs()+len(h.attrs)),
	}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		rec.Attrs[key] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, rec)
	h.sink.mu.Unlock()
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		sink:  h.sink,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &Handler{sink: h.sink, attrs: h.attrs, group: group}
}

// Records returns a copy of everything captured so far.
func (h *Handler) Records() []Record {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return append([]Record(nil), h.sink.records...)
}

// Codes returns the "code" attribute of each captured record that has one.
func (h *Handler) Codes() []string {
	var codes []string
	for _, r := range h.Records() {
		if code, ok := r.Attrs["code"].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// Reset discards captured records.
func (h *Handler) Reset() {
	h.sink.mu.Lock()
	h.sink.records = nil
	h.sink.mu.Unlock()
}
