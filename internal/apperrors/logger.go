package apperrors

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogEntry is one recorded error.
type LogEntry struct {
	ID       int               `json:"id"`
	Error    string            `json:"error"`
	Severity Severity          `json:"severity"`
	Context  map[string]string `json:"context,omitempty"`
	Resolved bool              `json:"resolved"`
	LoggedAt time.Time         `json:"loggedAt"`
}

// ErrorLogger keeps classified errors in memory for later inspection.
// Construct one per process and pass it where needed.
type ErrorLogger struct {
	mu      sync.Mutex
	entries []LogEntry
	nextID  int
	max     int
	logger  *zap.Logger
}

// NewErrorLogger keeps at most max entries (0 means unbounded). logger may be nil.
func NewErrorLogger(max int, logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{max: max, logger: logger, nextID: 1}
}

// Log classifies err, records it and returns the entry id.
func (l *ErrorLogger) Log(err error, ctx map[string]string) int {
	if err == nil {
		return 0
	}
	ue := Classify(err)

	fields := []zap.Field{zap.Error(err), zap.String("severity", string(ue.Severity))}
	for k, v := range ctx {
		fields = append(fields, zap.String(k, v))
	}
	if ue.Severity == SeverityHigh {
		l.logger.Error("application error", fields...)
	} else {
		l.logger.Warn("application error", fields...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.entries = append(l.entries, LogEntry{
		ID:       id,
		Error:    err.Error(),
		Severity: ue.Severity,
		Context:  ctx,
		LoggedAt: time.Now().UTC(),
	})
	if l.max > 0 && len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	return id
}

// Entries returns a copy of all recorded entries, oldest first.
func (l *ErrorLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Resolve marks an entry resolved. It reports whether the id was found.
func (l *ErrorLogger) Resolve(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Resolved = true
			return true
		}
	}
	return false
}

func (l *ErrorLogger) Unresolved() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.entries {
		if !e.Resolved {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops every entry.
func (l *ErrorLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.nextID = 1
}
