package rpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lldb-mcp/server/internal/mcperr"
	"github.com/lldb-mcp/server/internal/session"
)

// handlerFunc is one method's implementation: decode params, call the
// Session Manager, shape a result. Errors are always *mcperr.Error or get
// wrapped as Internal by Dispatch.
type handlerFunc func(mgr *session.Manager, params json.RawMessage) (interface{}, error)

// Dispatcher holds the method table and the single Session Manager every
// handler calls into. It carries no other state and no lock: concurrent
// calls from many transport handlers are safe by construction.
type Dispatcher struct {
	mgr   *session.Manager
	table map[string]handlerFunc
}

// NewDispatcher builds a Dispatcher wired to mgr.
func NewDispatcher(mgr *session.Manager) *Dispatcher {
	return &Dispatcher{mgr: mgr, table: methodTable}
}

// Dispatch executes one request and always returns a well-formed Response,
// never an error: dispatch failures, including a handler panic, become
// {error: {code: 9999, ...}} rather than propagating out of the transport
// goroutine that called Dispatch.
func (d *Dispatcher) Dispatch(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = errorResponse(req.ID, mcperr.Internalf(fmt.Errorf("%v", r), "panic in handler for method %q", req.Method))
		}
	}()

	method := req.Method
	params := req.Params

	if normalize(method) == "toolscall" {
		var call toolCallParams
		if err := json.Unmarshal(params, &call); err != nil {
			return errorResponse(req.ID, mcperr.InvalidParamsf("tools.call requires name and arguments: %v", err))
		}
		method = call.Name
		params = call.Arguments
	}

	handler, ok := d.table[normalize(method)]
	if !ok {
		return errorResponse(req.ID, mcperr.InvalidParamsf("unknown method %q", method))
	}

	result, err := handler(d.mgr, params)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{ID: req.ID, Result: result}
}

func errorResponse(id string, err error) Response {
	if derr, ok := mcperr.As(err); ok {
		payload := derr.ToPayload()
		ep := &ErrorPayload{Code: payload["code"].(int), Message: payload["message"].(string)}
		if data, ok := payload["data"].(map[string]interface{}); ok {
			ep.Data = data
		}
		return Response{ID: id, Error: ep}
	}
	return Response{ID: id, Error: &ErrorPayload{Code: int(mcperr.Internal), Message: err.Error()}}
}

// normalize collapses a method name's dotted, underscored, and "lldb"
// prefixed spellings onto one canonical lowercase key, so "lldb.launch",
// "lldb_launch" and "launch" all resolve to the same table entry.
func normalize(method string) string {
	m := strings.ToLower(method)
	m = strings.TrimPrefix(m, "lldb.")
	m = strings.TrimPrefix(m, "lldb_")
	m = strings.TrimPrefix(m, "lldb")
	m = strings.ReplaceAll(m, ".", "")
	m = strings.ReplaceAll(m, "_", "")
	return m
}
