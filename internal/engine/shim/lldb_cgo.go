//go:build lldb
// +build lldb

package shim

/*
#cgo CXXFLAGS: -std=c++14 -I/usr/lib/llvm-18/include -I/usr/lib/llvm-17/include
#cgo LDFLAGS: -ldl -lpthread
#include "bridge.h"
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"github.com/lldb-mcp/server/internal/engine"
)

// cgoDebugger is the real Engine Adapter, backed by the liblldb shared
// library resolved at New() time from the configured candidate paths.
type cgoDebugger struct {
	mu     sync.Mutex
	handle C.lldbshim_debugger_t
	events chan engine.NativeEvent
	stop   chan struct{}
	poll   time.Duration
}

// New probes candidatePaths in order with dlopen and, on the first success,
// returns a Debugger whose Valid() is true. If none load, it returns a
// Debugger that behaves exactly like the untagged build's unavailable stub,
// so the session manager's degrade path is identical either way.
// pollInterval sets how often the raw-event loop drains the native
// listener; zero or negative selects a 200ms default.
func New(candidatePaths []string, pollInterval time.Duration) engine.Factory {
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return func(sessionID string) (engine.Debugger, error) {
		if len(candidatePaths) == 0 {
			return &cgoDebugger{}, nil
		}
		cPaths := make([]*C.char, len(candidatePaths))
		for i, p := range candidatePaths {
			cPaths[i] = C.CString(p)
		}
		defer func() {
			for _, p := range cPaths {
				C.free(unsafe.Pointer(p))
			}
		}()

		handle := C.lldbshim_create((**C.char)(unsafe.Pointer(&cPaths[0])), C.int(len(cPaths)), nil)
		if handle == nil {
			return &cgoDebugger{}, nil
		}

		d := &cgoDebugger{
			handle: handle,
			events: make(chan engine.NativeEvent, 256),
			stop:   make(chan struct{}),
			poll:   pollInterval,
		}
		go d.pumpRawEvents()
		return d, nil
	}
}

func (d *cgoDebugger) Valid() bool { return d.handle != nil }

func (d *cgoDebugger) Events() <-chan engine.NativeEvent { return d.events }

func (d *cgoDebugger) pumpRawEvents() {
	buf := make([]byte, 64*1024)
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			close(d.events)
			return
		case <-ticker.C:
			n := C.lldbshim_poll_raw_events(d.handle, (*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf)), 64)
			if n == 0 {
				continue
			}
			// Each line is a compact {"type":...,"data":{...}} object; the
			// pump package owns JSON decoding and classification, this
			// layer only forwards the raw bytes as opaque text events.
			d.events <- engine.NativeEvent{Type: "raw", Data: map[string]interface{}{"lines": string(buf[:n])}, Timestamp: time.Now()}
		}
	}
}

func (d *cgoDebugger) requireValid() error {
	if d.handle == nil {
		return engine.ErrUnavailable
	}
	return nil
}

// goCmdResult converts the bridge's command-result struct, freeing the
// C-side strings as it copies them out.
func goCmdResult(r C.lldbshim_cmd_result_t) engine.CommandResult {
	out := C.GoString(r.output)
	errOut := C.GoString(r.error)
	C.lldbshim_free_string(r.output)
	C.lldbshim_free_string(r.error)
	return engine.CommandResult{Succeeded: r.succeeded != 0, Output: out, Error: errOut}
}

func (d *cgoDebugger) CreateTarget(file string) (engine.Target, engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.Target{}, engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cFile := C.CString(file)
	defer C.free(unsafe.Pointer(cFile))
	var tripleC *C.char
	var cr C.lldbshim_cmd_result_t
	ok := C.lldbshim_create_target(d.handle, cFile, &tripleC, &cr)
	cmd := goCmdResult(cr)
	if ok == 0 {
		return engine.Target{}, cmd, engine.ErrUnavailable
	}
	triple := C.GoString(tripleC)
	C.lldbshim_free_string(tripleC)
	return engine.Target{Triple: triple}, cmd, nil
}

func (d *cgoDebugger) Launch(opts engine.LaunchOptions) (engine.LaunchResult, engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.LaunchResult{}, engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	cArgs := make([]*C.char, len(opts.Args))
	for i, a := range opts.Args {
		cArgs[i] = C.CString(a)
		defer C.free(unsafe.Pointer(cArgs[i]))
	}
	var argsPtr **C.char
	if len(cArgs) > 0 {
		argsPtr = (**C.char)(unsafe.Pointer(&cArgs[0]))
	}

	cKeys := make([]*C.char, 0, len(opts.Env))
	cVals := make([]*C.char, 0, len(opts.Env))
	for k, v := range opts.Env {
		ck, cv := C.CString(k), C.CString(v)
		defer C.free(unsafe.Pointer(ck))
		defer C.free(unsafe.Pointer(cv))
		cKeys = append(cKeys, ck)
		cVals = append(cVals, cv)
	}
	var keysPtr, valsPtr **C.char
	if len(cKeys) > 0 {
		keysPtr = (**C.char)(unsafe.Pointer(&cKeys[0]))
		valsPtr = (**C.char)(unsafe.Pointer(&cVals[0]))
	}
	var cCwd *C.char
	if opts.Cwd != "" {
		cCwd = C.CString(opts.Cwd)
		defer C.free(unsafe.Pointer(cCwd))
	}

	var pid C.uint64_t
	var state C.int
	var cr C.lldbshim_cmd_result_t
	ok := C.lldbshim_launch(d.handle, argsPtr, C.int(len(cArgs)), keysPtr, valsPtr, C.int(len(cKeys)), cCwd, &pid, &state, &cr)
	cmd := goCmdResult(cr)
	if ok == 0 {
		return engine.LaunchResult{}, cmd, engine.ErrUnavailable
	}
	return engine.LaunchResult{PID: uint64(pid), State: engine.ProcessState(state)}, cmd, nil
}

func (d *cgoDebugger) Attach(pid uint64, name string) (engine.LaunchResult, engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.LaunchResult{}, engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var outPid C.uint64_t
	var state C.int
	var ok C.int
	var cr C.lldbshim_cmd_result_t
	if pid != 0 {
		ok = C.lldbshim_attach_pid(d.handle, C.uint64_t(pid), &outPid, &state, &cr)
	} else {
		cName := C.CString(name)
		defer C.free(unsafe.Pointer(cName))
		ok = C.lldbshim_attach_name(d.handle, cName, &outPid, &state, &cr)
	}
	cmd := goCmdResult(cr)
	if ok == 0 {
		return engine.LaunchResult{}, cmd, engine.ErrUnavailable
	}
	return engine.LaunchResult{PID: uint64(outPid), State: engine.ProcessState(state)}, cmd, nil
}

func (d *cgoDebugger) Restart(opts engine.LaunchOptions) (engine.LaunchResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.LaunchResult{}, err
	}
	d.mu.Lock()
	C.lldbshim_kill(d.handle)
	d.mu.Unlock()
	res, _, err := d.Launch(opts)
	return res, err
}

func (d *cgoDebugger) Kill() error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	C.lldbshim_kill(d.handle)
	return nil
}

func (d *cgoDebugger) Signal(sig int) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if C.lldbshim_signal(d.handle, C.int(sig)) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) ContinueProcess() (bool, error) {
	if err := d.requireValid(); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var wasRunning C.int
	if C.lldbshim_continue(d.handle, &wasRunning) == 0 {
		return false, engine.ErrUnavailable
	}
	return wasRunning != 0, nil
}

func (d *cgoDebugger) Pause() error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if C.lldbshim_pause(d.handle) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

// cgo forbids using C functions as Go values, so the three step kinds each
// dispatch through their own wrapper instead of a shared fn parameter.
func (d *cgoDebugger) StepIn() (engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var cr C.lldbshim_cmd_result_t
	ok := C.lldbshim_step_in(d.handle, &cr)
	cmd := goCmdResult(cr)
	if ok == 0 {
		return cmd, engine.ErrUnavailable
	}
	return cmd, nil
}

func (d *cgoDebugger) StepOver() (engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var cr C.lldbshim_cmd_result_t
	ok := C.lldbshim_step_over(d.handle, &cr)
	cmd := goCmdResult(cr)
	if ok == 0 {
		return cmd, engine.ErrUnavailable
	}
	return cmd, nil
}

func (d *cgoDebugger) StepOut() (engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var cr C.lldbshim_cmd_result_t
	ok := C.lldbshim_step_out(d.handle, &cr)
	cmd := goCmdResult(cr)
	if ok == 0 {
		return cmd, engine.ErrUnavailable
	}
	return cmd, nil
}

func (d *cgoDebugger) SetBreakpoint(file string, line int, symbol string, address *uint64) (engine.Breakpoint, engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.Breakpoint{}, engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var cFile, cSymbol *C.char
	if file != "" {
		cFile = C.CString(file)
		defer C.free(unsafe.Pointer(cFile))
	}
	if symbol != "" {
		cSymbol = C.CString(symbol)
		defer C.free(unsafe.Pointer(cSymbol))
	}
	var cAddr *C.uint64_t
	if address != nil {
		v := C.uint64_t(*address)
		cAddr = &v
	}
	var id C.int
	var cr C.lldbshim_cmd_result_t
	ok := C.lldbshim_set_breakpoint(d.handle, cFile, C.int(line), cSymbol, cAddr, &id, &cr)
	cmd := goCmdResult(cr)
	if ok == 0 {
		return engine.Breakpoint{}, cmd, engine.ErrUnavailable
	}
	return engine.Breakpoint{ID: int(id), Enabled: true}, cmd, nil
}

func (d *cgoDebugger) UpdateBreakpoint(id int, enabled *bool, ignoreCount *int, condition *string) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var cEnabled *C.int
	if enabled != nil {
		v := C.int(0)
		if *enabled {
			v = 1
		}
		cEnabled = &v
	}
	var cIgnore *C.int
	if ignoreCount != nil {
		v := C.int(*ignoreCount)
		cIgnore = &v
	}
	var cCond *C.char
	if condition != nil {
		cCond = C.CString(*condition)
		defer C.free(unsafe.Pointer(cCond))
	}
	if C.lldbshim_update_breakpoint(d.handle, C.int(id), cEnabled, cIgnore, cCond) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) DeleteBreakpoint(id int) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if C.lldbshim_delete_breakpoint(d.handle, C.int(id)) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) ListBreakpoints() ([]engine.Breakpoint, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n := int(C.lldbshim_num_breakpoints(d.handle))
	out := make([]engine.Breakpoint, 0, n)
	for i := 0; i < n; i++ {
		var id, enabled, hits C.int
		if C.lldbshim_breakpoint_at(d.handle, C.int(i), &id, &enabled, &hits) == 0 {
			continue
		}
		out = append(out, engine.Breakpoint{ID: int(id), Enabled: enabled != 0, HitCount: int(hits)})
	}
	return out, nil
}

func (d *cgoDebugger) SetWatchpoint(addr uint64, size int, read, write bool) (engine.Watchpoint, error) {
	if err := d.requireValid(); err != nil {
		return engine.Watchpoint{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	r, w := 0, 0
	if read {
		r = 1
	}
	if write {
		w = 1
	}
	var id C.int
	if C.lldbshim_set_watchpoint(d.handle, C.uint64_t(addr), C.int(size), C.int(r), C.int(w), &id) == 0 {
		return engine.Watchpoint{}, engine.ErrUnavailable
	}
	return engine.Watchpoint{ID: int(id), Enabled: true}, nil
}

func (d *cgoDebugger) DeleteWatchpoint(id int) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if C.lldbshim_delete_watchpoint(d.handle, C.int(id)) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) ListWatchpoints() ([]engine.Watchpoint, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n := int(C.lldbshim_num_watchpoints(d.handle))
	out := make([]engine.Watchpoint, 0, n)
	for i := 0; i < n; i++ {
		var id, enabled, hits C.int
		if C.lldbshim_watchpoint_at(d.handle, C.int(i), &id, &enabled, &hits) == 0 {
			continue
		}
		out = append(out, engine.Watchpoint{ID: int(id), Enabled: enabled != 0, HitCount: int(hits)})
	}
	return out, nil
}

func (d *cgoDebugger) Threads() ([]engine.Thread, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n := int(C.lldbshim_num_threads(d.handle))
	out := make([]engine.Thread, 0, n)
	for i := 0; i < n; i++ {
		var t C.lldbshim_thread_t
		if C.lldbshim_thread_at(d.handle, C.int(i), &t) == 0 {
			continue
		}
		out = append(out, engine.Thread{ID: uint64(t.id), State: engine.ProcessState(t.state)})
	}
	return out, nil
}

func (d *cgoDebugger) Frames(threadID uint64) ([]engine.Frame, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n := int(C.lldbshim_num_frames(d.handle, C.uint64_t(threadID)))
	out := make([]engine.Frame, 0, n)
	for i := 0; i < n; i++ {
		var f C.lldbshim_frame_t
		if C.lldbshim_frame_at(d.handle, C.uint64_t(threadID), C.int(i), &f) == 0 {
			continue
		}
		out = append(out, engine.Frame{
			Index:    int(f.index),
			Function: C.GoString(f.function),
			File:     C.GoString(f.file),
			Line:     int(f.line),
			PC:       uint64(f.pc),
		})
		C.lldbshim_free_string(f.function)
		C.lldbshim_free_string(f.file)
	}
	return out, nil
}

func (d *cgoDebugger) SelectThread(threadID uint64) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if C.lldbshim_select_thread(d.handle, C.uint64_t(threadID)) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) SelectFrame(threadID uint64, frameIndex int) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if C.lldbshim_select_frame(d.handle, C.uint64_t(threadID), C.int(frameIndex)) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) SelectedThreadID() (uint64, error) {
	if err := d.requireValid(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var id C.uint64_t
	if C.lldbshim_selected_thread_id(d.handle, &id) == 0 {
		return 0, engine.ErrUnavailable
	}
	return uint64(id), nil
}

func (d *cgoDebugger) Evaluate(expr string) (string, engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return "", engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cExpr := C.CString(expr)
	defer C.free(unsafe.Pointer(cExpr))
	cmd := goCmdResult(C.lldbshim_evaluate(d.handle, cExpr))
	return lastNonBlankLine(cmd.Output), cmd, nil
}

func lastNonBlankLine(s string) string {
	lines := splitLines(s)
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] != "" {
			return lines[i]
		}
	}
	return ""
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, trimCR(s[start:i]))
			start = i + 1
		}
	}
	lines = append(lines, trimCR(s[start:]))
	return lines
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

func (d *cgoDebugger) Command(raw string) (engine.CommandResult, error) {
	if err := d.requireValid(); err != nil {
		return engine.CommandResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cRaw := C.CString(raw)
	defer C.free(unsafe.Pointer(cRaw))
	return goCmdResult(C.lldbshim_handle_command(d.handle, cRaw)), nil
}

func (d *cgoDebugger) Disassemble(addr *uint64, count int) ([]engine.Instruction, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var cAddr *C.uint64_t
	if addr != nil {
		v := C.uint64_t(*addr)
		cAddr = &v
	}
	var addrs *C.uint64_t
	var mnemonics, operands **C.char
	var n C.int
	if C.lldbshim_disassemble(d.handle, cAddr, C.int(count), &addrs, &mnemonics, &operands, &n) == 0 {
		return nil, engine.ErrUnavailable
	}
	defer C.lldbshim_free_uint64_array(addrs)
	defer C.lldbshim_free_string_array(mnemonics, n)
	defer C.lldbshim_free_string_array(operands, n)

	count64 := int(n)
	addrSlice := (*[1 << 20]C.uint64_t)(unsafe.Pointer(addrs))[:count64:count64]
	mnemSlice := (*[1 << 20]*C.char)(unsafe.Pointer(mnemonics))[:count64:count64]
	opSlice := (*[1 << 20]*C.char)(unsafe.Pointer(operands))[:count64:count64]

	out := make([]engine.Instruction, count64)
	for i := 0; i < count64; i++ {
		out[i] = engine.Instruction{
			Addr:     uint64(addrSlice[i]),
			Mnemonic: C.GoString(mnemSlice[i]),
			Operands: C.GoString(opSlice[i]),
		}
	}
	return out, nil
}

func (d *cgoDebugger) ReadMemory(addr uint64, size int) ([]byte, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf *C.uint8_t
	var n C.int
	if C.lldbshim_read_memory(d.handle, C.uint64_t(addr), C.int(size), &buf, &n) == 0 {
		return nil, engine.ErrUnavailable
	}
	defer C.lldbshim_free_bytes(buf)
	return C.GoBytes(unsafe.Pointer(buf), n), nil
}

func (d *cgoDebugger) WriteMemory(addr uint64, data []byte) (int, error) {
	if err := d.requireValid(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var written C.int
	var dataPtr *C.uint8_t
	if len(data) > 0 {
		dataPtr = (*C.uint8_t)(unsafe.Pointer(&data[0]))
	}
	if C.lldbshim_write_memory(d.handle, C.uint64_t(addr), dataPtr, C.int(len(data)), &written) == 0 {
		return 0, engine.ErrUnavailable
	}
	return int(written), nil
}

func (d *cgoDebugger) ReadRegisters(threadID uint64) ([]engine.Register, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var names **C.char
	var values *C.uint64_t
	var n C.int
	if C.lldbshim_read_registers(d.handle, C.uint64_t(threadID), &names, &values, &n) == 0 {
		return nil, engine.ErrUnavailable
	}
	defer C.lldbshim_free_string_array(names, n)
	defer C.lldbshim_free_uint64_array(values)

	count := int(n)
	nameSlice := (*[1 << 20]*C.char)(unsafe.Pointer(names))[:count:count]
	valSlice := (*[1 << 20]C.uint64_t)(unsafe.Pointer(values))[:count:count]
	out := make([]engine.Register, count)
	for i := 0; i < count; i++ {
		out[i] = engine.Register{Name: C.GoString(nameSlice[i]), Value: uint64(valSlice[i])}
	}
	return out, nil
}

func (d *cgoDebugger) WriteRegister(threadID uint64, name string, value uint64) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	if C.lldbshim_write_register(d.handle, C.uint64_t(threadID), cName, C.uint64_t(value)) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) SearchSymbol(pattern, module string) ([]engine.Symbol, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cPattern := C.CString(pattern)
	defer C.free(unsafe.Pointer(cPattern))
	var cModule *C.char
	if module != "" {
		cModule = C.CString(module)
		defer C.free(unsafe.Pointer(cModule))
	}
	var names, modules **C.char
	var addrs *C.uint64_t
	var n C.int
	if C.lldbshim_search_symbol(d.handle, cPattern, cModule, &names, &addrs, &modules, &n) == 0 {
		return nil, engine.ErrUnavailable
	}
	defer C.lldbshim_free_string_array(names, n)
	defer C.lldbshim_free_string_array(modules, n)
	defer C.lldbshim_free_uint64_array(addrs)

	count := int(n)
	nameSlice := (*[1 << 20]*C.char)(unsafe.Pointer(names))[:count:count]
	modSlice := (*[1 << 20]*C.char)(unsafe.Pointer(modules))[:count:count]
	addrSlice := (*[1 << 20]C.uint64_t)(unsafe.Pointer(addrs))[:count:count]
	out := make([]engine.Symbol, count)
	for i := 0; i < count; i++ {
		out[i] = engine.Symbol{Name: C.GoString(nameSlice[i]), Address: uint64(addrSlice[i]), Module: C.GoString(modSlice[i])}
	}
	return out, nil
}

func (d *cgoDebugger) ListModules() ([]engine.Module, error) {
	if err := d.requireValid(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var paths, uuids, triples **C.char
	var n C.int
	if C.lldbshim_list_modules(d.handle, &paths, &uuids, &triples, &n) == 0 {
		return nil, engine.ErrUnavailable
	}
	defer C.lldbshim_free_string_array(paths, n)
	defer C.lldbshim_free_string_array(uuids, n)
	defer C.lldbshim_free_string_array(triples, n)

	count := int(n)
	pathSlice := (*[1 << 20]*C.char)(unsafe.Pointer(paths))[:count:count]
	uuidSlice := (*[1 << 20]*C.char)(unsafe.Pointer(uuids))[:count:count]
	tripleSlice := (*[1 << 20]*C.char)(unsafe.Pointer(triples))[:count:count]
	out := make([]engine.Module, count)
	for i := 0; i < count; i++ {
		out[i] = engine.Module{Path: C.GoString(pathSlice[i]), UUID: C.GoString(uuidSlice[i]), Triple: C.GoString(tripleSlice[i])}
	}
	return out, nil
}

func (d *cgoDebugger) EnableEngineLog(path string) error {
	if err := d.requireValid(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	if C.lldbshim_enable_log(d.handle, cPath) == 0 {
		return engine.ErrUnavailable
	}
	return nil
}

func (d *cgoDebugger) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == nil {
		return nil
	}
	if d.stop != nil {
		close(d.stop)
	}
	C.lldbshim_destroy(d.handle)
	d.handle = nil
	return nil
}
