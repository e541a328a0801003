// Package logging writes vibedove's line-oriented log file through log/slog.
//
// Each record is one line:
//
//	2026-05-01T09:30:00.000Z INFO task started {"taskID":"abc1234"}
//
// Write failures are swallowed so logging can never break a transition.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelEnv names the environment variable holding the minimum level.
const LevelEnv = "VIBEDOVE_LOG_LEVEL"

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv reads the minimum level from VIBEDOVE_LOG_LEVEL.
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(LevelEnv))
}

// FileHandler is a slog.Handler appending records to a file.
type FileHandler struct {
	path   string
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

// NewFileHandler creates a handler appending to path. The parent directory
// is created on first write.
func NewFileHandler(path string, level slog.Leveler) *FileHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FileHandler{path: path, level: level, mu: &sync.Mutex{}}
}

// Enabled implements slog.Handler.
func (h *FileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler. It never returns an error.
func (h *FileHandler) Handle(_ context.Context, r slog.Record) error {
	meta := make(map[string]any)
	for _, a := range h.attrs {
		addAttr(meta, a)
	}

	target := meta
	for _, g := range h.groups {
		sub, ok := target[g].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			target[g] = sub
		}
		target = sub
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(target, a)
		return true
	})
	pruneEmpty(meta)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	if len(meta) > 0 {
		if data, err := json.Marshal(meta); err == nil {
			b.WriteByte(' ')
			b.Write(data)
		}
	}
	b.WriteByte('\n')

	h.write(b.String())
	return nil
}

func (h *FileHandler) write(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line)
	_ = f.Close()
}

// WithAttrs implements slog.Handler.
func (h *FileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	if len(h.groups) > 0 {
		// nest under the open groups
		clone.attrs = append(append([]slog.Attr{}, h.attrs...), nestAttrs(h.groups, attrs))
	} else {
		clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *FileHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func nestAttrs(groups []string, attrs []slog.Attr) slog.Attr {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	attr := slog.Group(groups[len(groups)-1], args...)
	for i := len(groups) - 2; i >= 0; i-- {
		attr = slog.Group(groups[i], attr)
	}
	return attr
}

func addAttr(m map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}

	switch v.Kind() {
	case slog.KindGroup:
		target := m
		if a.Key != "" {
			sub, ok := m[a.Key].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				m[a.Key] = sub
			}
			target = sub
		}
		for _, ga := range v.Group() {
			addAttr(target, ga)
		}
	case slog.KindTime:
		m[a.Key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		m[a.Key] = v.Duration().String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			m[a.Key] = x.Error()
		case fmt.Stringer:
			m[a.Key] = x.String()
		default:
			m[a.Key] = x
		}
	default:
		m[a.Key] = v.Any()
	}
}

func pruneEmpty(m map[string]any) {
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			pruneEmpty(sub)
			if len(sub) == 0 {
				delete(m, k)
			}
		}
	}
}

// New returns a logger writing to path at the level from VIBEDOVE_LOG_LEVEL.
func New(path string) *slog.Logger {
	return slog.New(NewFileHandler(path, LevelFromEnv()))
}

// Setup installs a file logger as the slog default and returns it.
func Setup(path string) *slog.Logger {
	logger := New(path)
	slog.SetDefault(logger)
	return logger
}
