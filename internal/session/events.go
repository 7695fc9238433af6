package session

import "github.com/lldb-mcp/server/internal/eventbuf"

// PollEvents drains up to limit queued events for a session. This is the
// sole consumer of the Event Buffer the pump produces into; it never
// blocks waiting for new events, so a caller can poll on any cadence
// without tying up the engine.
func (m *Manager) PollEvents(id string, limit int) ([]eventbuf.Event, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if limit <= 0 {
		limit = m.cfg.Performance.DefaultPollLimit
	}
	return sess.buffer.Drain(limit), nil
}
