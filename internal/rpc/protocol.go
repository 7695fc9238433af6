// Package rpc implements the RPC Dispatch component: a stateless table
// mapping wire method names onto Session Manager operations. The dispatch
// itself holds no lock and no session state; all serialization happens
// inside the Session Manager, so many transport handlers can share one
// Dispatcher safely.
package rpc

import "encoding/json"

// Request is one line of the wire protocol: {"id", "method", "params"}.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is either a {"id","result"} or a {"id","error"} line, never
// both.
type Response struct {
	ID     string        `json:"id"`
	Result interface{}   `json:"result,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload is the wire {code,message,data} error shape.
type ErrorPayload struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// toolCallParams is the params shape for the tools.call framing: a single
// envelope carrying the real method name and arguments, equivalent in
// every other respect to calling that method name directly.
type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
