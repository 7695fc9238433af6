package session

import (
	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/mcperr"
)

// ContinueProcess resumes a stopped process. If the process is already
// running, this is a short-circuit no-op that still returns ok with a
// "process is already running" transcript note rather than an error, so
// callers racing the debuggee don't have to special-case the state.
func (m *Manager) ContinueProcess(id string) (string, error) {
	sess, err := m.get(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return "", err
	}

	alreadyRunning, err := sess.debugger.ContinueProcess()
	if err != nil {
		return "", mcperr.New(mcperr.ProcessMissing, "continue failed", nil)
	}
	if alreadyRunning {
		return writeTranscript(sess, "process continue", "", "process is already running\n"), nil
	}
	return writeTranscript(sess, "process continue", "", ""), nil
}

// PauseProcess stops a running process.
func (m *Manager) PauseProcess(id string) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return err
	}
	return sess.debugger.Pause()
}

// StepIn, StepOver and StepOut all require a valid process with a selected
// thread; a failed step reports the thread as missing.
func (m *Manager) StepIn(id string) (string, error)   { return m.step(id, "thread step-in", stepKindIn) }
func (m *Manager) StepOver(id string) (string, error) { return m.step(id, "thread step-over", stepKindOver) }
func (m *Manager) StepOut(id string) (string, error)  { return m.step(id, "thread step-out", stepKindOut) }

type stepKind int

const (
	stepKindIn stepKind = iota
	stepKindOver
	stepKindOut
)

func (m *Manager) step(id, cmd string, kind stepKind) (string, error) {
	sess, err := m.get(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return "", err
	}

	var cmdRes engine.CommandResult
	var stepErr error
	switch kind {
	case stepKindIn:
		cmdRes, stepErr = sess.debugger.StepIn()
	case stepKindOver:
		cmdRes, stepErr = sess.debugger.StepOver()
	case stepKindOut:
		cmdRes, stepErr = sess.debugger.StepOut()
	}
	if stepErr != nil {
		return "", mcperr.New(mcperr.ProcessMissing, "thread missing", nil)
	}
	return writeTranscript(sess, cmd, cmdRes.Output, cmdRes.Error), nil
}
