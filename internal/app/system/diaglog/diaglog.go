// internal/app/system/diaglog/diaglog.go
package diaglog

import (
	"context"
	"fmt"
	"sync"

	"github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Modes select where diagnostics go.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// ValidMode reports whether mode is a known diagnostics mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// UsesDB reports whether mode persists diagnostics to MongoDB.
func UsesDB(mode string) bool {
	return mode == ModeAll || mode == ModeDB
}

// Sink receives diagnostics. Implementations must not block for long and
// must not fail loudly: diagnostics never change the outcome of the
// operation that produced them.
type Sink interface {
	Record(ctx context.Context, event diagnostics.Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, event diagnostics.Event)

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, event diagnostics.Event) {
	f(ctx, event)
}

// Nop discards every event.
var Nop Sink = SinkFunc(func(context.Context, diagnostics.Event) {})

// Logger routes diagnostics to MongoDB and/or zap according to its mode.
type Logger struct {
	store  *diagnostics.Store
	zapLog *zap.Logger
	mode   string
}

// New creates a Logger. store may be nil, in which case db modes degrade to
// zap-only.
func New(store *diagnostics.Store, zapLog *zap.Logger, mode string) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	if !ValidMode(mode) {
		mode = ModeLog
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

// Mode returns the effective mode.
func (l *Logger) Mode() string {
	if l == nil {
		return ModeOff
	}
	return l.mode
}

// Record logs the event. A nil Logger is a no-op.
//
// The store write gets its own Short budget detached from ctx's
// cancellation, so events about timed-out or abandoned requests are still
// persisted. If the write fails in db mode the event goes to zap instead.
func (l *Logger) Record(ctx context.Context, event diagnostics.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}

	loggedToZap := false
	if l.mode == ModeAll || l.mode == ModeLog || l.store == nil {
		l.logToZap(event)
		loggedToZap = true
	}

	if UsesDB(l.mode) && l.store != nil {
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
		defer cancel()
		if err := l.store.Log(storeCtx, event); err != nil {
			l.zapLog.Error("failed to store diagnostic",
				zap.Error(err),
				zap.String("operation", event.Operation),
			)
			if !loggedToZap {
				l.logToZap(event)
			}
		}
	}
}

func (l *Logger) logToZap(event diagnostics.Event) {
	fields := []zap.Field{
		zap.Bool("diagnostic", true),
		zap.String("operation", event.Operation),
		zap.Bool("success", event.Success),
		zap.String("message", event.Message),
	}
	if event.RecordID != "" {
		fields = append(fields, zap.String("record_id", event.RecordID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", event.StatusCode))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("about us points", fields...)
	} else {
		l.zapLog.Error("about us points", fields...)
	}
}

// Multi fans an event out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(ctx context.Context, event diagnostics.Event) {
		for _, s := range live {
			s.Record(ctx, event)
		}
	})
}

// Recorder keeps events in memory. Handlers use one per request to surface
// the outcome on the page; tests use it to assert on diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []diagnostics.Event
}

// Record appends the event.
func (r *Recorder) Record(_ context.Context, event diagnostics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []diagnostics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]diagnostics.Event(nil), r.events...)
}

// Last returns the most recent event.
func (r *Recorder) Last() (diagnostics.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return diagnostics.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Summary renders an event as a single line for display.
func Summary(event diagnostics.Event) string {
	outcome := "succeeded"
	if !event.Success {
		outcome = "failed"
	}
	if event.Message == "" {
		return fmt.Sprintf("%s %s", event.Operation, outcome)
	}
	return fmt.Sprintf("%s %s: %s", event.Operation, outcome, event.Message)
}
