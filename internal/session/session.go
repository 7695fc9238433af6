// Package session implements the Session Manager: the component that owns
// every live debugging session, serializes access to each session's engine
// handle, and translates session-scoped operations into Engine Adapter
// calls plus the side effects (transcript, event buffer, history) those
// operations carry.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lldb-mcp/server/internal/config"
	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/eventbuf"
	"github.com/lldb-mcp/server/internal/history"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/mcperr"
	"github.com/lldb-mcp/server/internal/pump"
	"github.com/lldb-mcp/server/internal/transcript"
)

// lastLaunch remembers the parameters of the most recent launch so restart
// can relaunch with the same arguments, environment and working directory.
type lastLaunch struct {
	args  []string
	env   map[string]string
	cwd   string
	flags map[string]string
}

// Session is one live debugging session. Every field below the lock is
// private: callers only ever reach a Session through Manager, which holds
// the lock for the duration of each public method.
type Session struct {
	ID string

	mu sync.Mutex

	debugger   engine.Debugger
	pump       *pump.Pump
	buffer     *eventbuf.Buffer
	transcript *transcript.Writer

	hasTarget  bool
	hasProcess bool
	targetFile string
	pid        uint64
	lastLaunch lastLaunch

	createdAt time.Time
}

// Valid reports whether this session has a usable native engine.
func (s *Session) Valid() bool { return s.debugger != nil && s.debugger.Valid() }

/**
 * AGENT:     session-manager
 * CONTEXT:   Serializes all engine access for a single debugging session
 * REASON:    LLDB SB API objects are not safe for concurrent use from two
 *            RPCs at once, and Go's sync.Mutex is not recursive.
 * CHANGE:    Single non-recursive mutex per session, held for the full
 *            duration of each public Manager method; private helpers never
 *            re-acquire it.
 * PREVENTION:Never call a Session's private (lowercase) helpers from
 *            outside a method that already holds s.mu.
 * RISK:      Medium - a forgotten lock acquisition would race the engine.
 */
type Manager struct {
	cfg  *config.Config
	log  *logging.Logger
	eng  engine.Factory
	hist *history.Store

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager builds a Manager. hist may be nil when the history store is
// disabled by configuration; every history write is then a no-op.
func NewManager(cfg *config.Config, log *logging.Logger, eng engine.Factory, hist *history.Store) *Manager {
	return &Manager{
		cfg:      cfg,
		log:      log.Component("session"),
		eng:      eng,
		hist:     hist,
		sessions: make(map[string]*Session),
	}
}

// CreateSession starts a new session, attempting to create a native
// debugger. A failed native create degrades the session to
// engineUnavailable rather than failing the call; the session still exists
// and can be listed and terminated.
func (m *Manager) CreateSession() (string, error) {
	id := uuid.NewString()

	dbg, err := m.eng(id)
	if err != nil {
		m.log.Warn("engine.create_failed", map[string]interface{}{"sessionId": id, "error": err.Error()})
		dbg = nil
	}

	sess := &Session{
		ID:         id,
		debugger:   dbg,
		buffer:     eventbuf.New(m.cfg.Performance.EventBufferCapacity),
		transcript: transcript.New(m.cfg.TranscriptPath(id)),
		createdAt:  time.Now(),
	}
	if dbg != nil && dbg.Valid() {
		sess.pump = pump.New(id, dbg, sess.buffer, m.log, m.cfg.Performance.TerminateJoinTimeout)
	} else {
		m.log.Warn("engine.unavailable", map[string]interface{}{"sessionId": id})
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.hist.RecordSessionCreated(id)
	m.log.Info("session.created", map[string]interface{}{"sessionId": id})
	return id, nil
}

// TerminateSession destroys a session's native engine (if any) and removes
// it from the registry.
func (m *Manager) TerminateSession(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return mcperr.SessionNotFoundErr(id)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.debugger != nil {
		if err := sess.debugger.Close(); err != nil {
			m.log.Warn("engine.close_failed", map[string]interface{}{"sessionId": id, "error": err.Error()})
		}
	}
	if sess.pump != nil {
		sess.pump.Stop()
	}
	m.hist.RecordSessionTerminated(id)
	m.log.Info("session.terminated", map[string]interface{}{"sessionId": id})
	return nil
}

// ListSessions returns the ids of every live session.
func (m *Manager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

// ProcessPIDs returns the debuggee PID tracked for every session that
// currently has a bound process, keyed by session id. Used by the health
// surface to cross-check process liveness independently of engine state.
func (m *Manager) ProcessPIDs() map[string]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]uint64)
	for id, sess := range m.sessions {
		sess.mu.Lock()
		if sess.hasProcess && sess.pid != 0 {
			out[id] = sess.pid
		}
		sess.mu.Unlock()
	}
	return out
}

// EventBufferDepths returns the number of queued-but-undrained events per
// session, keyed by session id. Used by the health surface's buffer-depth
// gauge. The Event Buffer carries its own lock, so no per-session lock is
// taken here.
func (m *Manager) EventBufferDepths() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for id, sess := range m.sessions {
		out[id] = sess.buffer.Len()
	}
	return out
}

// get looks up a session by id without taking its per-session lock; callers
// lock sess.mu themselves immediately after.
func (m *Manager) get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, mcperr.SessionNotFoundErr(id)
	}
	return sess, nil
}

// requireEngine returns EngineUnavailable if the session's debugger never
// came up. Call with sess.mu already held.
func requireEngine(sess *Session) error {
	if sess.debugger == nil || !sess.debugger.Valid() {
		return mcperr.EngineUnavailableErr()
	}
	return nil
}

// requireTarget returns TargetMissing unless a target has been bound. Call
// with sess.mu already held.
func requireTarget(sess *Session) error {
	if !sess.hasTarget {
		return mcperr.TargetMissingErr()
	}
	return nil
}

// requireProcess returns ProcessMissing unless a process has been bound.
// Call with sess.mu already held.
func requireProcess(sess *Session) error {
	if !sess.hasProcess {
		return mcperr.ProcessMissingErr()
	}
	return nil
}
