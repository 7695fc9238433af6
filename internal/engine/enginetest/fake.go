// Package enginetest provides an in-memory fake of engine.Debugger so the
// Session Manager's lifecycle, locking and event-buffer semantics can be
// exercised without a native LLDB library present.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/lldb-mcp/server/internal/engine"
)

// Fake is a minimal, deterministic stand-in for a native debugger. Tests
// configure its behavior via the exported fields before handing it to a
// session.Manager through a Factory.
type Fake struct {
	mu sync.Mutex

	valid  bool
	events chan engine.NativeEvent
	closed bool

	target       engine.Target
	nextBPID     int
	breakpoints  []engine.Breakpoint
	nextWPID     int
	watchpoints  []engine.Watchpoint
	threads      []engine.Thread
	frames       map[uint64][]engine.Frame
	selectedTID  uint64
	memory       map[uint64]byte
	pid          uint64
	running      bool

	// FailCreateTarget, when true, makes CreateTarget return an error.
	FailCreateTarget bool
	FailLaunch       bool
	FailAttach       bool
}

// NewFactory returns an engine.Factory that always hands back the same
// *Fake, useful when a test wants to hold onto it to assert post-call state
// or push synthetic events.
func NewFactory(f *Fake) engine.Factory {
	return func(sessionID string) (engine.Debugger, error) { return f, nil }
}

// New builds a valid Fake with one thread/frame ready for inspection calls
// once a process exists.
func New() *Fake {
	return &Fake{
		valid:  true,
		events: make(chan engine.NativeEvent, 64),
		frames: map[uint64][]engine.Frame{
			1: {{Index: 0, Function: "main", File: "main.c", Line: 10, PC: 0x1000}},
		},
		threads: []engine.Thread{{ID: 1, State: engine.StateStopped}},
		memory:  make(map[uint64]byte),
		pid:     4242,
	}
}

func (f *Fake) Valid() bool { return f.valid }

func (f *Fake) Events() <-chan engine.NativeEvent { return f.events }

// Push deposits a synthetic native event, simulating what the real pump
// loop would observe from the engine's listener.
func (f *Fake) Push(ev engine.NativeEvent) { f.events <- ev }

func (f *Fake) CreateTarget(file string) (engine.Target, engine.CommandResult, error) {
	if f.FailCreateTarget {
		return engine.Target{}, engine.CommandResult{Error: "error: unable to create target\n"}, engine.ErrUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = engine.Target{Triple: "x86_64-unknown-linux-gnu"}
	cmd := engine.CommandResult{
		Succeeded: true,
		Output:    fmt.Sprintf("Current executable set to '%s' (x86_64).\n", file),
	}
	return f.target, cmd, nil
}

func (f *Fake) Launch(opts engine.LaunchOptions) (engine.LaunchResult, engine.CommandResult, error) {
	if f.FailLaunch {
		return engine.LaunchResult{}, engine.CommandResult{Error: "error: process launch failed\n"}, engine.ErrUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// A freshly launched process stops at entry, matching LLDB's default
	// launch behavior; ContinueProcess is what starts it running.
	f.running = false
	cmd := engine.CommandResult{
		Succeeded: true,
		Output:    fmt.Sprintf("Process %d launched: (x86_64)\n", f.pid),
	}
	return engine.LaunchResult{PID: f.pid, State: engine.StateStopped}, cmd, nil
}

func (f *Fake) Attach(pid uint64, name string) (engine.LaunchResult, engine.CommandResult, error) {
	if f.FailAttach {
		return engine.LaunchResult{}, engine.CommandResult{Error: "error: attach failed\n"}, engine.ErrUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	if pid != 0 {
		f.pid = pid
	}
	cmd := engine.CommandResult{
		Succeeded: true,
		Output:    fmt.Sprintf("Process %d stopped\n", f.pid),
	}
	return engine.LaunchResult{PID: f.pid, State: engine.StateStopped}, cmd, nil
}

func (f *Fake) Restart(opts engine.LaunchOptions) (engine.LaunchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	return engine.LaunchResult{PID: f.pid, State: engine.StateStopped}, nil
}

func (f *Fake) Kill() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	return nil
}

func (f *Fake) Signal(sig int) error { return nil }

func (f *Fake) ContinueProcess() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return true, nil
	}
	f.running = true
	return false, nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	return nil
}

func (f *Fake) StepIn() (engine.CommandResult, error) {
	return engine.CommandResult{Succeeded: true, Output: "Process 4242 stopped\n"}, nil
}
func (f *Fake) StepOver() (engine.CommandResult, error) {
	return engine.CommandResult{Succeeded: true, Output: "Process 4242 stopped\n"}, nil
}
func (f *Fake) StepOut() (engine.CommandResult, error) {
	return engine.CommandResult{Succeeded: true, Output: "Process 4242 stopped\n"}, nil
}

func (f *Fake) SetBreakpoint(file string, line int, symbol string, address *uint64) (engine.Breakpoint, engine.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextBPID++
	bp := engine.Breakpoint{ID: f.nextBPID, Enabled: true}
	f.breakpoints = append(f.breakpoints, bp)
	cmd := engine.CommandResult{
		Succeeded: true,
		Output:    fmt.Sprintf("Breakpoint %d: no locations (pending).\n", bp.ID),
	}
	if symbol != "" {
		cmd.Output = fmt.Sprintf("Breakpoint %d: where = target`%s, address = 0x0000000000001000\n", bp.ID, symbol)
	}
	return bp, cmd, nil
}

func (f *Fake) UpdateBreakpoint(id int, enabled *bool, ignoreCount *int, condition *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.breakpoints {
		if f.breakpoints[i].ID == id {
			if enabled != nil {
				f.breakpoints[i].Enabled = *enabled
			}
			if condition != nil {
				f.breakpoints[i].Condition = *condition
			}
			return nil
		}
	}
	return engine.ErrUnavailable
}

func (f *Fake) DeleteBreakpoint(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, bp := range f.breakpoints {
		if bp.ID == id {
			f.breakpoints = append(f.breakpoints[:i], f.breakpoints[i+1:]...)
			return nil
		}
	}
	return engine.ErrUnavailable
}

func (f *Fake) ListBreakpoints() ([]engine.Breakpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]engine.Breakpoint, len(f.breakpoints))
	copy(out, f.breakpoints)
	return out, nil
}

func (f *Fake) SetWatchpoint(addr uint64, size int, read, write bool) (engine.Watchpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextWPID++
	wp := engine.Watchpoint{ID: f.nextWPID, Enabled: true}
	f.watchpoints = append(f.watchpoints, wp)
	return wp, nil
}

func (f *Fake) DeleteWatchpoint(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, wp := range f.watchpoints {
		if wp.ID == id {
			f.watchpoints = append(f.watchpoints[:i], f.watchpoints[i+1:]...)
			return nil
		}
	}
	return engine.ErrUnavailable
}

func (f *Fake) ListWatchpoints() ([]engine.Watchpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]engine.Watchpoint, len(f.watchpoints))
	copy(out, f.watchpoints)
	return out, nil
}

func (f *Fake) Threads() ([]engine.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threads, nil
}

func (f *Fake) Frames(threadID uint64) ([]engine.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	frames, ok := f.frames[threadID]
	if !ok {
		return nil, engine.ErrUnavailable
	}
	return frames, nil
}

func (f *Fake) SelectThread(threadID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectedTID = threadID
	return nil
}

func (f *Fake) SelectFrame(threadID uint64, frameIndex int) error { return nil }

func (f *Fake) SelectedThreadID() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectedTID == 0 && len(f.threads) > 0 {
		return f.threads[0].ID, nil
	}
	return f.selectedTID, nil
}

func (f *Fake) Evaluate(expr string) (string, engine.CommandResult, error) {
	return "2", engine.CommandResult{Succeeded: true, Output: "(int) $0 = 2\n"}, nil
}

func (f *Fake) Command(raw string) (engine.CommandResult, error) {
	return engine.CommandResult{Succeeded: true, Output: "ok\n"}, nil
}

func (f *Fake) Disassemble(addr *uint64, count int) ([]engine.Instruction, error) {
	return []engine.Instruction{{Addr: 0x1000, Mnemonic: "nop", Operands: ""}}, nil
}

func (f *Fake) ReadMemory(addr uint64, size int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = f.memory[addr+uint64(i)]
	}
	return out, nil
}

func (f *Fake) WriteMemory(addr uint64, data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range data {
		f.memory[addr+uint64(i)] = b
	}
	return len(data), nil
}

func (f *Fake) ReadRegisters(threadID uint64) ([]engine.Register, error) {
	return []engine.Register{{Name: "rip", Value: 0x1000}}, nil
}

func (f *Fake) WriteRegister(threadID uint64, name string, value uint64) error { return nil }

func (f *Fake) SearchSymbol(pattern, module string) ([]engine.Symbol, error) {
	return []engine.Symbol{{Name: pattern, Address: 0x2000, Module: module}}, nil
}

func (f *Fake) ListModules() ([]engine.Module, error) {
	return []engine.Module{{Path: "/bin/target", Triple: "x86_64-unknown-linux-gnu"}}, nil
}

func (f *Fake) EnableEngineLog(path string) error { return nil }

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}
