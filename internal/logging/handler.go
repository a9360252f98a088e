// Package logging builds the slog handlers used by the CLI.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
)

// PrettyHandler is a zero-dependency slog.Handler that writes human-readable
// log lines in the format:
//
//	HH:MM:SS LEVEL msg  key=value key=value
//
// Colour codes are emitted only when color is true.
type PrettyHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
	color bool
	attrs []slog.Attr
}

func NewPrettyHandler(out io.Writer, level slog.Leveler, color bool) *PrettyHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &PrettyHandler{mu: &sync.Mutex{}, out: out, level: level, color: color}
}

func (h *PrettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	h.paint(&buf, colorGray)
	buf.WriteString(r.Time.Format(time.TimeOnly))
	h.paint(&buf, colorReset)
	buf.WriteByte(' ')

	h.paint(&buf, levelColor(r.Level))
	h.paint(&buf, colorBold)
	fmt.Fprintf(&buf, "%-5s", r.Level.String())
	h.paint(&buf, colorReset)
	buf.WriteByte(' ')

	buf.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		buf.WriteByte(' ')
		h.paint(&buf, colorCyan)
		buf.WriteString(a.Key)
		h.paint(&buf, colorReset)
		buf.WriteByte('=')
		buf.WriteString(fmt.Sprintf("%v", a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *PrettyHandler) WithGroup(_ string) slog.Handler { return h }

func (h *PrettyHandler) paint(buf *bytes.Buffer, code string) {
	if h.color {
		buf.WriteString(code)
	}
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	default:
		return colorGray
	}
}
