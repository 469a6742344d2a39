// Package logger is debugito's structured logging entry point.
//
// Emission goes through log/slog. The handler is a fan-out (built with
// slog-multi) of a plain slog text handler and an in-memory ring buffer, so
// that the REPL can still answer "what did the debugger just log" the way
// the teacher's pull-based logger.Log/logger.Write pair did, without giving
// up slog's structured fields.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// ring is a bounded, overwrite-oldest buffer of formatted log lines.
type ring struct {
	mu    sync.Mutex
	lines []string
	cap   int
}

func newRing(capacity int) *ring {
	return &ring{lines: make([]string, 0, capacity), cap: capacity}
}

func (r *ring) add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.cap {
		r.lines = r.lines[len(r.lines)-r.cap:]
	}
}

// Recent returns the buffered log lines, oldest first.
func (r *ring) Recent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// ringHandler adapts ring to slog.Handler.
type ringHandler struct {
	r     *ring
	attrs []slog.Attr
}

func (h *ringHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *ringHandler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", rec.Level, rec.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	rec.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	h.r.add(b.String())
	return nil
}

func (h *ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ringHandler{r: h.r, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *ringHandler) WithGroup(string) slog.Handler { return h }

// Logger wraps *slog.Logger with access to its in-memory tail.
type Logger struct {
	*slog.Logger
	tail *ring
}

// New builds a fan-out logger: a text handler writing to w at the given
// level, plus a 200-line in-memory tail accessible via Recent().
func New(w io.Writer, level slog.Level) *Logger {
	tail := newRing(200)

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	fanout := slogmulti.Fanout(textHandler, &ringHandler{r: tail})

	return &Logger{
		Logger: slog.New(fanout),
		tail:   tail,
	}
}

// Recent returns the most recently emitted log lines, oldest first.
func (l *Logger) Recent() []string {
	return l.tail.Recent()
}
