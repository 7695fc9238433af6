//go:build !lldb
// +build !lldb

// Package shim provides the Engine Adapter's native debugger bindings.
//
// The default build (no "lldb" tag) compiles this file: a Debugger whose
// Valid() always reports false, so the daemon starts and serves RPCs in the
// degraded engineUnavailable mode described in the session lifecycle without
// requiring LLDB development headers to be present. Build with `-tags lldb`
// on a host carrying an LLDB install to link the real cgo bridge in
// lldb_cgo.go instead.
package shim

import (
	"time"

	"github.com/lldb-mcp/server/internal/engine"
)

type unavailableDebugger struct {
	events chan engine.NativeEvent
}

// New returns the engine.Factory used when the daemon was built without the
// "lldb" tag: every session gets a Debugger whose Valid() reports false.
// Both parameters are accepted for signature parity with the cgo build and
// are otherwise unused.
func New(candidatePaths []string, pollInterval time.Duration) engine.Factory {
	return func(sessionID string) (engine.Debugger, error) {
		return &unavailableDebugger{events: make(chan engine.NativeEvent)}, nil
	}
}

func (d *unavailableDebugger) Valid() bool { return false }

func (d *unavailableDebugger) Events() <-chan engine.NativeEvent { return d.events }

func (d *unavailableDebugger) Close() error {
	close(d.events)
	return nil
}

func (d *unavailableDebugger) CreateTarget(file string) (engine.Target, engine.CommandResult, error) {
	return engine.Target{}, engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) Launch(opts engine.LaunchOptions) (engine.LaunchResult, engine.CommandResult, error) {
	return engine.LaunchResult{}, engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) Attach(pid uint64, name string) (engine.LaunchResult, engine.CommandResult, error) {
	return engine.LaunchResult{}, engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) Restart(opts engine.LaunchOptions) (engine.LaunchResult, error) {
	return engine.LaunchResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) Kill() error          { return engine.ErrUnavailable }
func (d *unavailableDebugger) Signal(sig int) error { return engine.ErrUnavailable }

func (d *unavailableDebugger) ContinueProcess() (bool, error) { return false, engine.ErrUnavailable }
func (d *unavailableDebugger) Pause() error                   { return engine.ErrUnavailable }
func (d *unavailableDebugger) StepIn() (engine.CommandResult, error) {
	return engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) StepOver() (engine.CommandResult, error) {
	return engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) StepOut() (engine.CommandResult, error) {
	return engine.CommandResult{}, engine.ErrUnavailable
}

func (d *unavailableDebugger) SetBreakpoint(file string, line int, symbol string, address *uint64) (engine.Breakpoint, engine.CommandResult, error) {
	return engine.Breakpoint{}, engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) UpdateBreakpoint(id int, enabled *bool, ignoreCount *int, condition *string) error {
	return engine.ErrUnavailable
}
func (d *unavailableDebugger) DeleteBreakpoint(id int) error { return engine.ErrUnavailable }
func (d *unavailableDebugger) ListBreakpoints() ([]engine.Breakpoint, error) {
	return nil, engine.ErrUnavailable
}

func (d *unavailableDebugger) SetWatchpoint(addr uint64, size int, read, write bool) (engine.Watchpoint, error) {
	return engine.Watchpoint{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) DeleteWatchpoint(id int) error { return engine.ErrUnavailable }
func (d *unavailableDebugger) ListWatchpoints() ([]engine.Watchpoint, error) {
	return nil, engine.ErrUnavailable
}

func (d *unavailableDebugger) Threads() ([]engine.Thread, error) { return nil, engine.ErrUnavailable }
func (d *unavailableDebugger) Frames(threadID uint64) ([]engine.Frame, error) {
	return nil, engine.ErrUnavailable
}
func (d *unavailableDebugger) SelectThread(threadID uint64) error             { return engine.ErrUnavailable }
func (d *unavailableDebugger) SelectFrame(threadID uint64, frameIndex int) error {
	return engine.ErrUnavailable
}
func (d *unavailableDebugger) SelectedThreadID() (uint64, error) { return 0, engine.ErrUnavailable }

func (d *unavailableDebugger) Evaluate(expr string) (string, engine.CommandResult, error) {
	return "", engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) Command(raw string) (engine.CommandResult, error) {
	return engine.CommandResult{}, engine.ErrUnavailable
}
func (d *unavailableDebugger) Disassemble(addr *uint64, count int) ([]engine.Instruction, error) {
	return nil, engine.ErrUnavailable
}

func (d *unavailableDebugger) ReadMemory(addr uint64, size int) ([]byte, error) {
	return nil, engine.ErrUnavailable
}
func (d *unavailableDebugger) WriteMemory(addr uint64, data []byte) (int, error) {
	return 0, engine.ErrUnavailable
}

func (d *unavailableDebugger) ReadRegisters(threadID uint64) ([]engine.Register, error) {
	return nil, engine.ErrUnavailable
}
func (d *unavailableDebugger) WriteRegister(threadID uint64, name string, value uint64) error {
	return engine.ErrUnavailable
}
func (d *unavailableDebugger) SearchSymbol(pattern, module string) ([]engine.Symbol, error) {
	return nil, engine.ErrUnavailable
}
func (d *unavailableDebugger) ListModules() ([]engine.Module, error) {
	return nil, engine.ErrUnavailable
}

func (d *unavailableDebugger) EnableEngineLog(path string) error { return engine.ErrUnavailable }
