package memory

import (
	"context"
	"sync"

	"github.com/chainpass/webhook-notify/audit"
)

// Logger is an in-memory audit sink for tests and local runs
type Logger struct {
	mu      sync.Mutex
	records []audit.Record
}

// NewLogger creates an empty in-memory audit logger
func NewLogger() *Logger {
	return &Logger{}
}

// Append stores the record. It never fails.
func (l *Logger) Append(_ context.Context, rec audit.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

// Records returns a copy of everything appended so far
func (l *Logger) Records() []audit.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]audit.Record, len(l.records))
	copy(out, l.records)
	return out
}

// ByKind returns appended records of one kind
func (l *Logger) ByKind(kind string) []audit.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []audit.Record
	for _, rec := range l.records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}
