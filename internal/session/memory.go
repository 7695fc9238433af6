package session

import (
	"encoding/hex"

	"github.com/lldb-mcp/server/internal/mcperr"
)

// ReadMemory reads size bytes starting at addr from the session's process,
// returned as a hex string matching the wire protocol's memory encoding.
func (m *Manager) ReadMemory(id string, addr uint64, size int) (string, error) {
	sess, err := m.get(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return "", err
	}
	data, err := sess.debugger.ReadMemory(addr, size)
	if err != nil {
		return "", mcperr.MemoryAccessFailedErr(err.Error())
	}
	return hex.EncodeToString(data), nil
}

// WriteMemory writes hex-encoded data starting at addr, returning the
// number of bytes actually written.
func (m *Manager) WriteMemory(id string, addr uint64, dataHex string) (int, error) {
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return 0, mcperr.InvalidParamsf("data must be hex-encoded: %v", err)
	}
	sess, err := m.get(id)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return 0, err
	}
	written, err := sess.debugger.WriteMemory(addr, data)
	if err != nil {
		return 0, mcperr.MemoryAccessFailedErr(err.Error())
	}
	return written, nil
}
