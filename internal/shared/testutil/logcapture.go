package testutil

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// LogRecord is one captured record with its attributes flattened.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

func (r LogRecord) String() string {
	return r.Level.String() + " " + r.Message
}

type capture struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler records everything logged through it. Handlers
// derived with WithAttrs append to the same capture.
type BufferedSlogHandler struct {
	capture *capture
	attrs   []slog.Attr
	tb      testing.TB
}

// NewBufferedSlogHandler creates a capturing handler. Records are echoed to
// tb.Logf when tb is not nil.
func NewBufferedSlogHandler(tb testing.TB) *BufferedSlogHandler {
	return &BufferedSlogHandler{capture: &capture{}, tb: tb}
}

// NewTestLogger returns a logger backed by a fresh BufferedSlogHandler.
func NewTestLogger(tb testing.TB) (*slog.Logger, *BufferedSlogHandler) {
	h := NewBufferedSlogHandler(tb)
	return slog.New(h), h
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Time: r.Time, Level: r.Level, Message: r.Message, Attrs: map[string]any{}}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})

	h.capture.mu.Lock()
	h.capture.records = append(h.capture.records, rec)
	h.capture.mu.Unlock()

	if h.tb != nil {
		h.tb.Logf("%s %v", rec, rec.Attrs)
	}
	return nil
}

func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferedSlogHandler{
		capture: h.capture,
		attrs:   append(slices.Clip(h.attrs), attrs...),
		tb:      h.tb,
	}
}

// WithGroup flattens groups: attributes keep their plain keys.
func (h *BufferedSlogHandler) WithGroup(string) slog.Handler { return h }

// GetRecords returns a copy of the captured records.
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.capture.mu.Lock()
	defer h.capture.mu.Unlock()
	return slices.Clone(h.capture.records)
}

func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	return slices.DeleteFunc(h.GetRecords(), func(r LogRecord) bool { return r.Level != level })
}

// FindMessage returns the first record whose message contains message.
func (h *BufferedSlogHandler) FindMessage(message string) (LogRecord, bool) {
	records := h.GetRecords()
	if i := slices.IndexFunc(records, func(r LogRecord) bool { return strings.Contains(r.Message, message) }); i >= 0 {
		return records[i], true
	}
	return LogRecord{}, false
}

func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	_, ok := h.FindMessage(message)
	return ok
}

// ContainsAttr reports whether any record has key set to value.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	return slices.ContainsFunc(h.GetRecords(), func(r LogRecord) bool {
		v, ok := r.Attrs[key]
		return ok && v == value
	})
}

func (h *BufferedSlogHandler) Clear() {
	h.capture.mu.Lock()
	h.capture.records = nil
	h.capture.mu.Unlock()
}

func (h *BufferedSlogHandler) Count() int {
	h.capture.mu.Lock()
	defer h.capture.mu.Unlock()
	return len(h.capture.records)
}

// AssertLogContains fails tb unless a record at level contains message.
func AssertLogContains(tb testing.TB, h *BufferedSlogHandler, level slog.Level, message string) bool {
	tb.Helper()
	records := h.GetRecordsByLevel(level)
	found := slices.ContainsFunc(records, func(r LogRecord) bool { return strings.Contains(r.Message, message) })
	return assert.Truef(tb, found, "no %s record containing %q; captured %v", level, message, records)
}

// AssertLogAttr fails tb unless some record has key set to value.
func AssertLogAttr(tb testing.TB, h *BufferedSlogHandler, key string, value any) bool {
	tb.Helper()
	return assert.Truef(tb, h.ContainsAttr(key, value), "no record with %s=%v; captured %v", key, value, h.GetRecords())
}

// AssertNoErrors fails tb if anything was logged at error level.
func AssertNoErrors(tb testing.TB, h *BufferedSlogHandler) bool {
	tb.Helper()
	return assert.Emptyf(tb, h.GetRecordsByLevel(slog.LevelError), "unexpected error records")
}
