// Package debug traces xpgo's decode and flatten pipeline as a stream of
// typed events.
//
// Tracing is off unless SetEnabled(true) is called (the command does this
// for --debug or XPGO_DEBUG=1). While it is off NewSession returns nil, and
// every method on a nil *Session returns immediately, so callers pass the
// session around unconditionally.
//
// Sinks write JSON Lines by default; PrettySink is meant for people.
package debug

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

// SetEnabled switches tracing on or off for the whole process.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Enabled reports whether tracing is on.
func Enabled() bool {
	return enabled.Load()
}

// InitFromEnv turns tracing on when XPGO_DEBUG=1.
func InitFromEnv() {
	if os.Getenv("XPGO_DEBUG") == "1" {
		SetEnabled(true)
	}
}

// PrettyFromEnv reports whether XPGO_DEBUG_PRETTY=1 asks for the pretty sink.
func PrettyFromEnv() bool {
	return os.Getenv("XPGO_DEBUG_PRETTY") == "1"
}

// Session stamps events with an id and a sequence number and hands them to
// one sink. Emit is serialised, so a session may be shared by concurrent
// flattens; Seq gives the order events reached the sink.
type Session struct {
	id      string
	started time.Time

	mu     sync.Mutex
	sink   Sink
	seq    uint64
	closed bool
}

// NewSession opens a session on sink and emits session/Start. It returns
// nil when tracing is off or sink is nil.
func NewSession(sink Sink) *Session {
	if !Enabled() || sink == nil {
		return nil
	}

	s := &Session{
		id:      newSessionID(),
		started: time.Now(),
		sink:    sink,
	}
	s.Emit("session", "Start", SessionStartData{Library: "xpgo", Schema: schemaVersion})
	return s
}

// SessionID returns the 8 hex digit session id, or "" for a nil session.
func (s *Session) SessionID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Emit sends one event. Sink errors are dropped: tracing never changes the
// outcome of the operation being traced.
func (s *Session) Emit(phase, event string, data any) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	//nolint:errcheck // sink failures are not reported
	s.sink.Write(Event{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		SessionID: s.id,
		Seq:       s.seq,
		Phase:     phase,
		Event:     event,
		Data:      data,
	})
}

// Close emits session/End and closes the sink. Later calls, and Emit after
// Close, do nothing.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	s.Emit("session", "End", SessionEndData{
		Events:    s.events() + 1,
		ElapsedMs: time.Since(s.started).Milliseconds(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sink.Close()
}

func (s *Session) events() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func newSessionID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%08x", uint32(time.Now().UnixNano()))
	}
	return hex.EncodeToString(b)
}

// schemaVersion tags the event layout for consumers of the JSON stream.
const schemaVersion = "1.0"

// Event is the envelope written to sinks.
type Event struct {
	Timestamp string `json:"ts"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
	Phase     string `json:"phase"`
	Event     string `json:"event"`
	Data      any    `json:"data"`
}
