package session

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/mcperr"
)

// TargetResult is returned by CreateTarget.
type TargetResult struct {
	Triple     string
	Platform   string
	Transcript string
}

// CreateTarget binds a session to an executable, enforcing the configured
// allowed-root policy before ever touching the engine.
func (m *Manager) CreateTarget(id, file, arch, triple, platform string) (TargetResult, error) {
	sess, err := m.get(id)
	if err != nil {
		return TargetResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireEngine(sess); err != nil {
		return TargetResult{}, err
	}
	if root := m.cfg.Policy.AllowedRoot; root != "" {
		realFile, err := filepath.Abs(file)
		if err == nil {
			if r, err := filepath.EvalSymlinks(realFile); err == nil {
				realFile = r
			}
		}
		realRoot, _ := filepath.Abs(root)
		if r, err := filepath.EvalSymlinks(realRoot); err == nil {
			realRoot = r
		}
		if realFile != realRoot && !strings.HasPrefix(realFile, realRoot+string(os.PathSeparator)) {
			return TargetResult{}, mcperr.TargetOutsideAllowedRootErr(file, root)
		}
	}

	target, cmdRes, err := sess.debugger.CreateTarget(file)
	cmd := "target create \"" + file + "\""
	text := writeTranscript(sess, cmd, cmdRes.Output, cmdRes.Error)
	if err != nil {
		return TargetResult{}, mcperr.TargetCreationFailedErr(file)
	}

	sess.hasTarget = true
	sess.targetFile = file
	sess.buffer.Push(eventBufEvent(sess.ID, "targetCreated", map[string]interface{}{"file": file}))
	m.hist.RecordTargetCreated(id, file, target.Triple)

	return TargetResult{Triple: target.Triple, Platform: platform, Transcript: text}, nil
}

// LaunchResult is returned by Launch, Attach and Restart.
type LaunchResult struct {
	PID        uint64
	State      engine.ProcessState
	Transcript string
}

// Launch starts the bound target as a new process.
func (m *Manager) Launch(id string, args []string, env map[string]string, cwd string, flags map[string]string) (LaunchResult, error) {
	if !m.cfg.Policy.AllowLaunch {
		return LaunchResult{}, mcperr.LaunchNotAllowedErr()
	}
	sess, err := m.get(id)
	if err != nil {
		return LaunchResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireEngine(sess); err != nil {
		return LaunchResult{}, err
	}
	if err := requireTarget(sess); err != nil {
		return LaunchResult{}, err
	}

	opts := engine.LaunchOptions{Args: args, Env: env, Cwd: cwd, Flags: flags}
	res, cmdRes, err := sess.debugger.Launch(opts)
	text := writeTranscript(sess, launchCommand(args), cmdRes.Output, cmdRes.Error)
	if err != nil {
		return LaunchResult{}, mcperr.New(mcperr.ProcessMissing, "launch failed", nil)
	}

	sess.hasProcess = true
	sess.pid = res.PID
	sess.lastLaunch = lastLaunch{args: args, env: env, cwd: cwd, flags: flags}
	_ = sess.debugger.EnableEngineLog(m.cfg.EngineLogPath(id))

	sess.buffer.Push(eventBufEvent(sess.ID, "processLaunched", map[string]interface{}{"pid": res.PID, "state": int(res.State)}))
	m.hist.RecordLaunch(id, res.PID)

	return LaunchResult{PID: res.PID, State: res.State, Transcript: text}, nil
}

func launchCommand(args []string) string {
	cmd := "process launch"
	if len(args) > 0 {
		cmd += " -- " + strings.Join(args, " ")
	}
	return cmd
}

// Attach binds the session's process to a running target by pid or name.
func (m *Manager) Attach(id string, pid uint64, name string) (LaunchResult, error) {
	if !m.cfg.Policy.AllowAttach {
		return LaunchResult{}, mcperr.AttachNotAllowedErr()
	}
	sess, err := m.get(id)
	if err != nil {
		return LaunchResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireEngine(sess); err != nil {
		return LaunchResult{}, err
	}
	if pid == 0 && name == "" {
		return LaunchResult{}, mcperr.InvalidParamsf("attach requires pid or name")
	}

	res, cmdRes, err := sess.debugger.Attach(pid, name)
	var cmd string
	if pid != 0 {
		cmd = "process attach --pid " + strconv.FormatUint(pid, 10)
	} else {
		cmd = "process attach --name \"" + name + "\""
	}
	text := writeTranscript(sess, cmd, cmdRes.Output, cmdRes.Error)
	if err != nil {
		return LaunchResult{}, mcperr.AttachFailedErr()
	}

	sess.hasTarget = true
	sess.hasProcess = true
	sess.pid = res.PID
	_ = sess.debugger.EnableEngineLog(m.cfg.EngineLogPath(id))
	sess.buffer.Push(eventBufEvent(sess.ID, "processAttached", map[string]interface{}{"pid": res.PID, "state": int(res.State)}))
	m.hist.RecordAttach(id, res.PID)

	return LaunchResult{PID: res.PID, State: res.State, Transcript: text}, nil
}

// Restart kills the current process (if any) and relaunches with the last
// used launch parameters through the engine's Restart. No transcript entry
// is written; the cgo adapter performs the relaunch with the same `process
// launch` interpreter command as Launch.
func (m *Manager) Restart(id string) (LaunchResult, error) {
	sess, err := m.get(id)
	if err != nil {
		return LaunchResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := requireEngine(sess); err != nil {
		return LaunchResult{}, err
	}
	if err := requireTarget(sess); err != nil {
		return LaunchResult{}, err
	}

	if sess.hasProcess {
		_ = sess.debugger.Kill()
	}
	opts := engine.LaunchOptions{Args: sess.lastLaunch.args, Env: sess.lastLaunch.env, Cwd: sess.lastLaunch.cwd, Flags: sess.lastLaunch.flags}
	res, err := sess.debugger.Restart(opts)
	if err != nil {
		return LaunchResult{}, mcperr.New(mcperr.ProcessMissing, "launch failed", nil)
	}
	sess.hasProcess = true
	sess.pid = res.PID
	m.hist.RecordLaunch(id, res.PID)
	return LaunchResult{PID: res.PID, State: res.State}, nil
}

// Signal delivers a raw POSIX signal to the debuggee process, the escape
// hatch for debuggees that install their own signal handlers.
func (m *Manager) Signal(id string, sig int) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return err
	}
	return sess.debugger.Signal(sig)
}
