package session

import (
	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/mcperr"
)

// ThreadInfo is the wire-facing view of one thread.
type ThreadInfo struct {
	ID    uint64 `json:"id"`
	State int    `json:"state"`
}

// Threads lists every thread of the session's process.
func (m *Manager) Threads(id string) ([]ThreadInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return nil, err
	}
	list, err := sess.debugger.Threads()
	if err != nil {
		return nil, mcperr.ProcessMissingErr()
	}
	out := make([]ThreadInfo, len(list))
	for i, t := range list {
		out[i] = ThreadInfo{ID: t.ID, State: int(t.State)}
	}
	return out, nil
}

// FrameInfo is the wire-facing view of one stack frame.
type FrameInfo struct {
	Index    int    `json:"index"`
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	PC       uint64 `json:"pc"`
}

// Frames lists every frame on threadID's stack.
func (m *Manager) Frames(id string, threadID uint64) ([]FrameInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return nil, err
	}
	frames, err := sess.debugger.Frames(threadID)
	if err != nil {
		return nil, mcperr.ThreadMissingErr(threadID)
	}
	return toFrameInfo(frames), nil
}

// StackTrace is Frames defaulted to the selected thread when threadID is
// nil, so a caller inspecting a fresh stop doesn't have to enumerate
// threads first.
func (m *Manager) StackTrace(id string, threadID *uint64) ([]FrameInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return nil, err
	}
	tid, err := resolveThreadID(sess, threadID)
	if err != nil {
		return nil, err
	}
	frames, err := sess.debugger.Frames(tid)
	if err != nil {
		return nil, mcperr.ThreadMissingErr(tid)
	}
	return toFrameInfo(frames), nil
}

func resolveThreadID(sess *Session, threadID *uint64) (uint64, error) {
	if threadID != nil {
		return *threadID, nil
	}
	tid, err := sess.debugger.SelectedThreadID()
	if err != nil {
		return 0, mcperr.ProcessMissingErr()
	}
	return tid, nil
}

func toFrameInfo(frames []engine.Frame) []FrameInfo {
	out := make([]FrameInfo, len(frames))
	for i, f := range frames {
		out[i] = FrameInfo{Index: f.Index, Function: f.Function, File: f.File, Line: f.Line, PC: f.PC}
	}
	return out
}

// SelectThread sets the process's selected thread.
func (m *Manager) SelectThread(id string, threadID uint64) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return err
	}
	if err := sess.debugger.SelectThread(threadID); err != nil {
		return mcperr.ThreadMissingErr(threadID)
	}
	return nil
}

// SelectFrame sets threadID's selected frame.
func (m *Manager) SelectFrame(id string, threadID uint64, frameIndex int) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return err
	}
	if err := sess.debugger.SelectFrame(threadID, frameIndex); err != nil {
		return mcperr.ThreadMissingErr(threadID)
	}
	return nil
}

// EvaluateResult is returned by Evaluate.
type EvaluateResult struct {
	Value      string
	Transcript string
}

// Evaluate runs an expression through the console's `expr` command and
// extracts the last non-blank output line as the scalar value. A non-nil
// frameIndex selects that frame on the selected thread before evaluating,
// so frame-local variables resolve against the requested frame.
func (m *Manager) Evaluate(id, expr string, frameIndex *int) (EvaluateResult, error) {
	sess, err := m.get(id)
	if err != nil {
		return EvaluateResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return EvaluateResult{}, err
	}
	if frameIndex != nil {
		tid, err := resolveThreadID(sess, nil)
		if err != nil {
			return EvaluateResult{}, err
		}
		if err := sess.debugger.SelectFrame(tid, *frameIndex); err != nil {
			return EvaluateResult{}, mcperr.ThreadMissingErr(tid)
		}
	}
	value, cmdResult, err := sess.debugger.Evaluate(expr)
	if err != nil {
		return EvaluateResult{}, mcperr.Internalf(err, "evaluate failed")
	}
	text := writeTranscript(sess, "expr "+expr, cmdResult.Output, cmdResult.Error)
	return EvaluateResult{Value: value, Transcript: text}, nil
}

// CommandResult is returned by Command.
type CommandResult struct {
	OK         bool
	Output     string
	Error      string
	Transcript string
}

// Command runs an arbitrary debugger-console command verbatim, the raw
// passthrough escape hatch the structured API can't cover.
func (m *Manager) Command(id, raw string) (CommandResult, error) {
	sess, err := m.get(id)
	if err != nil {
		return CommandResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireEngine(sess); err != nil {
		return CommandResult{}, err
	}
	res, err := sess.debugger.Command(raw)
	if err != nil {
		return CommandResult{}, mcperr.Internalf(err, "command failed")
	}
	text := writeTranscript(sess, raw, res.Output, res.Error)
	return CommandResult{OK: res.Succeeded, Output: res.Output, Error: res.Error, Transcript: text}, nil
}

// InstructionInfo is the wire-facing view of one disassembled instruction.
type InstructionInfo struct {
	Addr     uint64 `json:"addr"`
	Mnemonic string `json:"mnemonic"`
	Operands string `json:"operands"`
}

// Disassemble reads count instructions starting at addr, defaulting to the
// selected frame's PC when addr is nil.
func (m *Manager) Disassemble(id string, addr *uint64, count int) ([]InstructionInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return nil, err
	}
	if addr == nil {
		if err := requireProcess(sess); err != nil {
			return nil, err
		}
	}
	if count <= 0 {
		count = 64
	}
	insns, err := sess.debugger.Disassemble(addr, count)
	if err != nil {
		return nil, mcperr.Internalf(err, "disassemble failed")
	}
	out := make([]InstructionInfo, len(insns))
	for i, insn := range insns {
		out[i] = InstructionInfo{Addr: insn.Addr, Mnemonic: insn.Mnemonic, Operands: insn.Operands}
	}
	return out, nil
}

// RegisterInfo is the wire-facing view of one CPU register.
type RegisterInfo struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// ReadRegisters returns every register of threadID's top frame, defaulting
// to the selected thread when threadID is nil.
func (m *Manager) ReadRegisters(id string, threadID *uint64) ([]RegisterInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return nil, err
	}
	tid, err := resolveThreadID(sess, threadID)
	if err != nil {
		return nil, err
	}
	regs, err := sess.debugger.ReadRegisters(tid)
	if err != nil {
		return nil, mcperr.ThreadMissingErr(tid)
	}
	out := make([]RegisterInfo, len(regs))
	for i, r := range regs {
		out[i] = RegisterInfo{Name: r.Name, Value: r.Value}
	}
	return out, nil
}

// WriteRegister sets a single register's value on threadID's top frame.
func (m *Manager) WriteRegister(id string, threadID uint64, name string, value uint64) error {
	sess, err := m.get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireProcess(sess); err != nil {
		return err
	}
	if err := sess.debugger.WriteRegister(threadID, name, value); err != nil {
		return mcperr.Internalf(err, "write register failed")
	}
	return nil
}

// SymbolInfo is the wire-facing view of one symbol search match.
type SymbolInfo struct {
	Name    string `json:"name"`
	Address uint64 `json:"address"`
	Module  string `json:"module"`
}

// SearchSymbol looks up symbols matching pattern, optionally scoped to one
// module.
func (m *Manager) SearchSymbol(id, pattern, module string) ([]SymbolInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return nil, err
	}
	matches, err := sess.debugger.SearchSymbol(pattern, module)
	if err != nil {
		return nil, mcperr.Internalf(err, "search symbol failed")
	}
	out := make([]SymbolInfo, len(matches))
	for i, s := range matches {
		out[i] = SymbolInfo{Name: s.Name, Address: s.Address, Module: s.Module}
	}
	return out, nil
}

// ModuleInfo is the wire-facing view of one loaded module.
type ModuleInfo struct {
	Path   string `json:"path"`
	UUID   string `json:"uuid"`
	Triple string `json:"triple"`
}

// ListModules lists every module loaded into the target.
func (m *Manager) ListModules(id string) ([]ModuleInfo, error) {
	sess, err := m.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := requireTarget(sess); err != nil {
		return nil, err
	}
	mods, err := sess.debugger.ListModules()
	if err != nil {
		return nil, mcperr.Internalf(err, "list modules failed")
	}
	out := make([]ModuleInfo, len(mods))
	for i, mod := range mods {
		out[i] = ModuleInfo{Path: mod.Path, UUID: mod.UUID, Triple: mod.Triple}
	}
	return out, nil
}
