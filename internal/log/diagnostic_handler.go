package log

import (
	"context"
	"log/slog"
	"sync"
)

// DiagKey is the attribute key that marks a record as a pipeline diagnostic.
// Its value is one of the Diag* kinds below.
const DiagKey = "diag"

// Diagnostic kinds. Each corresponds to a non-fatal error class in the
// pipeline's error taxonomy; fatal errors terminate the run and are not
// counted here.
const (
	// DiagSegmentation marks a page skipped because its XML was malformed
	// or its buffer exceeded the page size cap.
	DiagSegmentation = "segmentation"

	// DiagParseDegraded marks a page whose markup failed to parse and was
	// written as a single raw-text block instead.
	DiagParseDegraded = "parse_degraded"

	// DiagModelSkipped marks a page skipped because its revision content
	// model is not wikitext.
	DiagModelSkipped = "model_skipped"

	// DiagChecksum marks an archive whose integrity digest did not match
	// the published value. The run continues but is flagged unverified.
	DiagChecksum = "checksum"
)

// DiagnosticHandler wraps an slog.Handler and tallies diagnostic records.
//
// Design decision: we use a handler wrapper rather than a separate counter
// object threaded through every stage because:
//  1. Stages already hold a logger; emitting a diagnostic is one log call.
//  2. The log stream and the report counts can never disagree.
//  3. It works with any underlying handler (text, JSON, discard).
type DiagnosticHandler struct {
	handler slog.Handler

	mu     sync.Mutex
	counts map[string]int
}

// NewDiagnosticHandler creates a DiagnosticHandler wrapping the given
// handler. If handler is nil, slog.Default()'s handler is used.
func NewDiagnosticHandler(handler slog.Handler) *DiagnosticHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &DiagnosticHandler{
		handler: handler,
		counts:  make(map[string]int),
	}
}

// Enabled reports whether the underlying handler handles the given level.
// Diagnostics are counted regardless of level filtering in Handle, so a
// quiet log configuration does not lose the tallies; slog however consults
// Enabled before calling Handle, so diagnostics are emitted at Warn to pass
// the default filter.
func (h *DiagnosticHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle counts the record if it carries a diagnostic kind, then forwards it.
func (h *DiagnosticHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != DiagKey {
			return true
		}
		kind := a.Value.String()
		h.mu.Lock()
		h.counts[kind]++
		h.mu.Unlock()
		return false
	})
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a handler whose records share this handler's tallies.
// Attributes added via With are not inspected for diagnostic kinds; the
// pipeline always places the kind on the record itself.
func (h *DiagnosticHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &shared{handler: h.handler.WithAttrs(attrs), parent: h}
}

// WithGroup returns a handler whose records share this handler's tallies.
func (h *DiagnosticHandler) WithGroup(name string) slog.Handler {
	return &shared{handler: h.handler.WithGroup(name), parent: h}
}

// Counts returns a copy of the per-kind diagnostic tallies.
func (h *DiagnosticHandler) Counts() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]int, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// Count returns the tally for one diagnostic kind.
func (h *DiagnosticHandler) Count(kind string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[kind]
}

// shared is a derived handler that funnels diagnostic counts back to the
// DiagnosticHandler it was derived from.
type shared struct {
	handler slog.Handler
	parent  *DiagnosticHandler
}

func (s *shared) Enabled(ctx context.Context, level slog.Level) bool {
	return s.handler.Enabled(ctx, level)
}

func (s *shared) Handle(ctx context.Context, r slog.Record) error {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != DiagKey {
			return true
		}
		kind := a.Value.String()
		s.parent.mu.Lock()
		s.parent.counts[kind]++
		s.parent.mu.Unlock()
		return false
	})
	return s.handler.Handle(ctx, r)
}

func (s *shared) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &shared{handler: s.handler.WithAttrs(attrs), parent: s.parent}
}

func (s *shared) WithGroup(name string) slog.Handler {
	return &shared{handler: s.handler.WithGroup(name), parent: s.parent}
}
