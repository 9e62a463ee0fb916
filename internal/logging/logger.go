// Package logging provides leveled logging and structured event tracing
// for the matching core. It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLogger for structured JSONL traces (cycle-log.jsonl, edge-log.jsonl)
//
// Adapted from the teacher's decision-logging package: the teacher traces
// one JSONL line per behavior-activation decision, here the Scheduler
// traces one line per cycle and the Edge Calculator one line per tick.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug, logging every hard-filter
// rejection and every computed score. Too verbose for routine operation,
// useful when debugging a scoring regression.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// EventLogger writes structured events to a JSONL file. Safe for
// concurrent use. A nil *EventLogger is safe to use; all methods are
// no-ops on a nil receiver.
type EventLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewEventLogger opens (creating if needed) dir/name for append and
// returns an EventLogger writing to it. Returns nil if the file cannot be
// opened; callers treat a nil *EventLogger as "tracing disabled".
func NewEventLogger(dir, name string) *EventLogger {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil
	}
	return &EventLogger{file: f}
}

// Log writes event as a single JSONL line, with a "time" field added
// automatically. The caller's map is not mutated. Safe to call on a nil
// receiver.
func (el *EventLogger) Log(event map[string]any) {
	if el == nil || el.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	el.mu.Lock()
	defer el.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = el.file.Write(data)
}

// Close closes the underlying file. Safe to call on a nil receiver.
func (el *EventLogger) Close() {
	if el == nil || el.file == nil {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()
	el.file.Close()
	el.file = nil
}
