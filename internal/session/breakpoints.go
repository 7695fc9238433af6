package session

import (
	"strconv"

	"github.com/lldb-mcp/server/internal/mcperr"
)

// BreakpointResult is returned by SetBreakpoint.
type BreakpointResult struct {
	ID         int
	Transcript string
}

// SetBreakpoint creates a breakpoint by file/line, symbol, or address,
// exactly one of which must be supplied.
func (m *Manager) SetBreakpoint(id, file string, line int, symbol string, address *uint64) (BreakpointResult, error) {
	sess, err := m.get(id)
	if err != nil {
		return BreakpointResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireEngine(sess); err != nil {
		return BreakpointResult{}, err
	}
	if err := requireTarget(sess); err != nil {
		return BreakpointResult{}, err
	}
	if file == "" && symbol == "" && address == nil {
		return BreakpointResult{}, mcperr.InvalidParamsf("one of file+line, symbol, or address is required")
	}

	bp, cmdRes, err := sess.debugger.SetBreakpoint(file, line, symbol, address)
	cmd := breakpointSetCommand(file, line, symbol, address)
	text := writeTranscript(sess, cmd, cmdRes.Output, cmdRes.Error)
	if err != nil {
		return BreakpointResult{}, mcperr.BreakpointErrorf("breakpoint create failed")
	}

	sess.buffer.Push(eventBufEvent(sess.ID, "breakpointSet", map[string]interface{}{"breakpointId": bp.ID}))
	m.hist.RecordBreakpointSet(id, bp.ID, file, line, symbol)
	return BreakpointResult{ID: bp.ID, Transcript: text}, nil
}

func breakpointSetCommand(file string, line int, symbol string, address *uint64) string {
	switch {
	case file != "" && line > 0:
		return "breakpoint set --file \"" + file + "\" --line " + strconv.Itoa(line)
	case symbol != "":
		return "breakpoint set --name \"" + symbol + "\""
	case address != nil:
		return "breakpoint set --address 0x" + strconv.FormatUint(*address, 16)
	default:
		return "breakpoint set"
	}
}

// UpdateBreakpoint changes enabled/ignoreCount/condition on an existing
// breakpoint, leaving unspecified fields untouched.
func (m *Manager) UpdateBreakpoint(id string, breakpointID int, enabled *bool, ignoreCount *int, condition *string) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return err
	}
	if err := sess.debugger.UpdateBreakpoint(breakpointID, enabled, ignoreCount, condition); err != nil {
		return mcperr.BreakpointErrorf("breakpoint not found")
	}
	sess.buffer.Push(eventBufEvent(sess.ID, "breakpointUpdated", map[string]interface{}{"breakpointId": breakpointID}))
	return nil
}

// DeleteBreakpoint removes a breakpoint by id.
func (m *Manager) DeleteBreakpoint(id string, breakpointID int) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return err
	}
	if err := sess.debugger.DeleteBreakpoint(breakpointID); err != nil {
		return mcperr.BreakpointErrorf("breakpoint delete failed")
	}
	return nil
}

// ListBreakpoints returns every breakpoint currently set on the target.
func (m *Manager) ListBreakpoints(id string) ([]BreakpointInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return nil, err
	}
	list, err := sess.debugger.ListBreakpoints()
	if err != nil {
		return nil, mcperr.BreakpointErrorf("list breakpoints failed")
	}
	out := make([]BreakpointInfo, len(list))
	for i, bp := range list {
		out[i] = BreakpointInfo{ID: bp.ID, Enabled: bp.Enabled, HitCount: bp.HitCount}
	}
	return out, nil
}

// BreakpointInfo is the wire-facing view of one breakpoint.
type BreakpointInfo struct {
	ID       int  `json:"id"`
	Enabled  bool `json:"enabled"`
	HitCount int  `json:"hitCount"`
}
