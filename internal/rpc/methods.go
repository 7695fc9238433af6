package rpc

import (
	"encoding/json"

	"github.com/lldb-mcp/server/internal/eventbuf"
	"github.com/lldb-mcp/server/internal/mcperr"
	"github.com/lldb-mcp/server/internal/session"
)

// methodTable maps the canonical (normalize'd) method name to its handler.
// Every handler decodes its own params so a bad shape surfaces as
// invalidParams rather than a panic.
var methodTable = map[string]handlerFunc{
	"initialize":       hInitialize,
	"terminate":        hTerminate,
	"listsessions":     hListSessions,
	"createtarget":     hCreateTarget,
	"launch":           hLaunch,
	"attach":           hAttach,
	"restart":          hRestart,
	"signal":           hSignal,
	"setbreakpoint":    hSetBreakpoint,
	"deletebreakpoint": hDeleteBreakpoint,
	"listbreakpoints":  hListBreakpoints,
	"updatebreakpoint": hUpdateBreakpoint,
	"setwatchpoint":    hSetWatchpoint,
	"deletewatchpoint": hDeleteWatchpoint,
	"listwatchpoints":  hListWatchpoints,
	"continue":         hContinue,
	"pause":            hPause,
	"stepin":           hStepIn,
	"stepover":         hStepOver,
	"stepout":          hStepOut,
	"threads":          hThreads,
	"frames":           hFrames,
	"stacktrace":       hStackTrace,
	"selectthread":     hSelectThread,
	"selectframe":      hSelectFrame,
	"evaluate":         hEvaluate,
	"readregisters":    hReadRegisters,
	"writeregister":    hWriteRegister,
	"disassemble":      hDisassemble,
	"listmodules":      hListModules,
	"searchsymbol":     hSearchSymbol,
	"readmemory":       hReadMemory,
	"writememory":      hWriteMemory,
	"command":          hCommand,
	"pollevents":       hPollEvents,
}

func decode(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return mcperr.InvalidParamsf("malformed params: %v", err)
	}
	return nil
}

func hInitialize(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	id, err := mgr.CreateSession()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"sessionId": id}, nil
}

type sessionOnlyParams struct {
	SessionID string `json:"sessionId"`
}

func hTerminate(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.TerminateSession(p.SessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

func hListSessions(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"sessions": mgr.ListSessions()}, nil
}

type createTargetParams struct {
	SessionID string `json:"sessionId"`
	File      string `json:"file"`
	Arch      string `json:"arch"`
	Triple    string `json:"triple"`
	Platform  string `json:"platform"`
}

func hCreateTarget(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p createTargetParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.File == "" {
		return nil, mcperr.InvalidParamsf("file is required")
	}
	res, err := mgr.CreateTarget(p.SessionID, p.File, p.Arch, p.Triple, p.Platform)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"triple": res.Triple, "platform": res.Platform, "transcript": res.Transcript}, nil
}

type launchParams struct {
	SessionID string            `json:"sessionId"`
	Args      []string          `json:"args"`
	Env       map[string]string `json:"env"`
	Cwd       string            `json:"cwd"`
	Flags     map[string]string `json:"flags"`
}

func hLaunch(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p launchParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	res, err := mgr.Launch(p.SessionID, p.Args, p.Env, p.Cwd, p.Flags)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"pid": res.PID, "state": int(res.State), "transcript": res.Transcript}, nil
}

type attachParams struct {
	SessionID string `json:"sessionId"`
	PID       uint64 `json:"pid"`
	Name      string `json:"name"`
}

func hAttach(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p attachParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.PID == 0 && p.Name == "" {
		return nil, mcperr.InvalidParamsf("attach requires pid or name")
	}
	res, err := mgr.Attach(p.SessionID, p.PID, p.Name)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"pid": res.PID, "state": int(res.State), "transcript": res.Transcript}, nil
}

func hRestart(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	res, err := mgr.Restart(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"pid": res.PID, "state": int(res.State)}, nil
}

type signalParams struct {
	SessionID string `json:"sessionId"`
	Signal    int    `json:"signal"`
}

func hSignal(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p signalParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.Signal(p.SessionID, p.Signal); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

type setBreakpointParams struct {
	SessionID string  `json:"sessionId"`
	File      string  `json:"file"`
	Line      int     `json:"line"`
	Symbol    string  `json:"symbol"`
	Address   *uint64 `json:"address"`
}

func hSetBreakpoint(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p setBreakpointParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	res, err := mgr.SetBreakpoint(p.SessionID, p.File, p.Line, p.Symbol, p.Address)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"breakpointId": res.ID, "transcript": res.Transcript}, nil
}

type breakpointIDParams struct {
	SessionID    string `json:"sessionId"`
	BreakpointID int    `json:"breakpointId"`
}

func hDeleteBreakpoint(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p breakpointIDParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.DeleteBreakpoint(p.SessionID, p.BreakpointID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

func hListBreakpoints(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.ListBreakpoints(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"breakpoints": list}, nil
}

type updateBreakpointParams struct {
	SessionID    string  `json:"sessionId"`
	BreakpointID int     `json:"breakpointId"`
	Enabled      *bool   `json:"enabled"`
	IgnoreCount  *int    `json:"ignoreCount"`
	Condition    *string `json:"condition"`
}

func hUpdateBreakpoint(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p updateBreakpointParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.UpdateBreakpoint(p.SessionID, p.BreakpointID, p.Enabled, p.IgnoreCount, p.Condition); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

type setWatchpointParams struct {
	SessionID string `json:"sessionId"`
	Addr      uint64 `json:"addr"`
	Size      int    `json:"size"`
	Read      *bool  `json:"read"`
	Write     *bool  `json:"write"`
}

func hSetWatchpoint(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p setWatchpointParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	read, write := true, true
	if p.Read != nil {
		read = *p.Read
	}
	if p.Write != nil {
		write = *p.Write
	}
	if !read && !write {
		return nil, mcperr.InvalidParamsf("at least one of read or write must be true")
	}
	id, err := mgr.SetWatchpoint(p.SessionID, p.Addr, p.Size, read, write)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"watchpointId": id}, nil
}

type watchpointIDParams struct {
	SessionID    string `json:"sessionId"`
	WatchpointID int    `json:"watchpointId"`
}

func hDeleteWatchpoint(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p watchpointIDParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.DeleteWatchpoint(p.SessionID, p.WatchpointID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

func hListWatchpoints(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.ListWatchpoints(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"watchpoints": list}, nil
}

func hContinue(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	transcript, err := mgr.ContinueProcess(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true, "transcript": transcript}, nil
}

func hPause(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.PauseProcess(p.SessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

func hStepIn(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	return stepResult(mgr, params, mgr.StepIn)
}

func hStepOver(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	return stepResult(mgr, params, mgr.StepOver)
}

func hStepOut(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	return stepResult(mgr, params, mgr.StepOut)
}

func stepResult(mgr *session.Manager, params json.RawMessage, step func(string) (string, error)) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	transcript, err := step(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true, "transcript": transcript}, nil
}

func hThreads(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.Threads(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"threads": list}, nil
}

type threadIDParams struct {
	SessionID string `json:"sessionId"`
	ThreadID  uint64 `json:"threadId"`
}

func hFrames(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p threadIDParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.Frames(p.SessionID, p.ThreadID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"frames": list}, nil
}

type stackTraceParams struct {
	SessionID string  `json:"sessionId"`
	ThreadID  *uint64 `json:"threadId"`
}

func hStackTrace(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p stackTraceParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.StackTrace(p.SessionID, p.ThreadID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"frames": list}, nil
}

func hSelectThread(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p threadIDParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.SelectThread(p.SessionID, p.ThreadID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

type selectFrameParams struct {
	SessionID  string `json:"sessionId"`
	ThreadID   uint64 `json:"threadId"`
	FrameIndex int    `json:"frameIndex"`
}

func hSelectFrame(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p selectFrameParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := mgr.SelectFrame(p.SessionID, p.ThreadID, p.FrameIndex); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

type evaluateParams struct {
	SessionID  string `json:"sessionId"`
	Expr       string `json:"expr"`
	FrameIndex *int   `json:"frameIndex"`
}

func hEvaluate(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p evaluateParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Expr == "" {
		return nil, mcperr.InvalidParamsf("expr is required")
	}
	res, err := mgr.Evaluate(p.SessionID, p.Expr, p.FrameIndex)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"value": res.Value, "transcript": res.Transcript}, nil
}

type readRegistersParams struct {
	SessionID string  `json:"sessionId"`
	ThreadID  *uint64 `json:"threadId"`
}

func hReadRegisters(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p readRegistersParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.ReadRegisters(p.SessionID, p.ThreadID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"registers": list}, nil
}

type writeRegisterParams struct {
	SessionID string `json:"sessionId"`
	ThreadID  uint64 `json:"threadId"`
	Name      string `json:"name"`
	Value     uint64 `json:"value"`
}

func hWriteRegister(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p writeRegisterParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, mcperr.InvalidParamsf("name is required")
	}
	if err := mgr.WriteRegister(p.SessionID, p.ThreadID, p.Name, p.Value); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

type disassembleParams struct {
	SessionID string  `json:"sessionId"`
	Addr      *uint64 `json:"addr"`
	Count     int     `json:"count"`
}

func hDisassemble(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p disassembleParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Count < 0 {
		return nil, mcperr.InvalidParamsf("count must not be negative")
	}
	list, err := mgr.Disassemble(p.SessionID, p.Addr, p.Count)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"instructions": list}, nil
}

func hListModules(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p sessionOnlyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	list, err := mgr.ListModules(p.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"modules": list}, nil
}

type searchSymbolParams struct {
	SessionID string `json:"sessionId"`
	Pattern   string `json:"pattern"`
	Module    string `json:"module"`
}

func hSearchSymbol(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p searchSymbolParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Pattern == "" {
		return nil, mcperr.InvalidParamsf("pattern is required")
	}
	list, err := mgr.SearchSymbol(p.SessionID, p.Pattern, p.Module)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"symbols": list}, nil
}

type readMemoryParams struct {
	SessionID string `json:"sessionId"`
	Addr      uint64 `json:"addr"`
	Size      int    `json:"size"`
}

func hReadMemory(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p readMemoryParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Size < 0 {
		return nil, mcperr.InvalidParamsf("size must not be negative")
	}
	hexBytes, err := mgr.ReadMemory(p.SessionID, p.Addr, p.Size)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"bytes": hexBytes}, nil
}

type writeMemoryParams struct {
	SessionID string `json:"sessionId"`
	Addr      uint64 `json:"addr"`
	Bytes     string `json:"bytes"`
}

func hWriteMemory(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p writeMemoryParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	written, err := mgr.WriteMemory(p.SessionID, p.Addr, p.Bytes)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"written": written}, nil
}

type commandParams struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
}

func hCommand(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p commandParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Command == "" {
		return nil, mcperr.InvalidParamsf("command is required")
	}
	res, err := mgr.Command(p.SessionID, p.Command)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": res.OK, "output": res.Output, "error": res.Error, "transcript": res.Transcript}, nil
}

type pollEventsParams struct {
	SessionID string `json:"sessionId"`
	Limit     int    `json:"limit"`
}

func hPollEvents(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
	var p pollEventsParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	events, err := mgr.PollEvents(p.SessionID, p.Limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []eventbuf.Event{}
	}
	return map[string]interface{}{"events": events}, nil
}
