package session

import "github.com/lldb-mcp/server/internal/mcperr"

// WatchpointInfo is the wire-facing view of one watchpoint.
type WatchpointInfo struct {
	ID       int  `json:"id"`
	Enabled  bool `json:"enabled"`
	HitCount int  `json:"hitCount"`
}

// SetWatchpoint creates a read/write/access watchpoint over [addr, addr+size).
func (m *Manager) SetWatchpoint(id string, addr uint64, size int, read, write bool) (int, error) {
	sess, err := m.get(id)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return 0, err
	}
	wp, err := sess.debugger.SetWatchpoint(addr, size, read, write)
	if err != nil {
		return 0, mcperr.WatchpointErrorf("watchpoint create failed")
	}
	sess.buffer.Push(eventBufEvent(sess.ID, "watchpointSet", map[string]interface{}{
		"watchpointId": wp.ID, "read": read, "write": write, "size": size,
	}))
	m.hist.RecordWatchpointSet(id, wp.ID, addr, size)
	return wp.ID, nil
}

// DeleteWatchpoint removes a watchpoint by id.
func (m *Manager) DeleteWatchpoint(id string, watchpointID int) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return err
	}
	if err := sess.debugger.DeleteWatchpoint(watchpointID); err != nil {
		return mcperr.WatchpointErrorf("watchpoint delete failed")
	}
	sess.buffer.Push(eventBufEvent(sess.ID, "watchpointDeleted", map[string]interface{}{"watchpointId": watchpointID}))
	return nil
}

// ListWatchpoints returns every watchpoint currently set on the target.
func (m *Manager) ListWatchpoints(id string) ([]WatchpointInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return nil, err
	}
	list, err := sess.debugger.ListWatchpoints()
	if err != nil {
		return nil, mcperr.WatchpointErrorf("list watchpoints failed")
	}
	out := make([]WatchpointInfo, len(list))
	for i, wp := range list {
		out[i] = WatchpointInfo{ID: wp.ID, Enabled: wp.Enabled, HitCount: wp.HitCount}
	}
	return out, nil
}
