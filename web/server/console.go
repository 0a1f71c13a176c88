package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that mirrors records to a browser console
// channel and passes them on to the process handler
type ConsoleHandler struct {
	next        slog.Handler
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
	group       string
}

// NewConsoleHandler creates a handler that forwards to next and, without
// blocking, to consoleChan
func NewConsoleHandler(next slog.Handler, consoleChan chan<- ConsoleMessage) *ConsoleHandler {
	return &ConsoleHandler{next: next, consoleChan: consoleChan}
}

// Enabled defers to the process handler
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.consoleChan != nil {
		msg := ConsoleMessage{
			Message:   h.format(record),
			Timestamp: record.Time,
			Level:     levelName(record.Level),
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		select {
		case h.consoleChan <- msg:
		default:
			// Channel full, skip (don't block)
		}
	}
	return h.next.Handle(ctx, record)
}

// WithAttrs implements slog.Handler
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.next = h.next.WithGroup(name)
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *ConsoleHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// format renders the record as "message key=value ..."
func (h *ConsoleHandler) format(record slog.Record) string {
	var b strings.Builder
	b.WriteString(record.Message)
	write := func(a slog.Attr) {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
	}
	for _, a := range h.attrs {
		write(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		write(a)
		return true
	})
	return b.String()
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
