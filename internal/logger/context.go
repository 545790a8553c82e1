package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a capsule being
// processed on a bound connection: which subsystem/host it belongs to,
// which queue, and timing for duration reporting.
type LogContext struct {
	TraceID    string // correlation ID for a single Connect/Property exchange
	Subsystem  string // subsystem NQN
	HostNQN    string // host NQN
	ClientAddr string // transport-level peer address
	QID        uint16 // queue ID (0 = admin)
	StartTime  time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a connection's peer address.
func NewLogContext(clientAddr string) *LogContext {
	return &LogContext{
		ClientAddr: clientAddr,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithSubsystem returns a copy with the subsystem NQN set
func (lc *LogContext) WithSubsystem(nqn string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Subsystem = nqn
	}
	return clone
}

// WithQID returns a copy with the queue ID set
func (lc *LogContext) WithQID(qid uint16) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.QID = qid
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
