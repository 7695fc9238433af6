package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lldb-mcp/server/internal/config"
	"github.com/lldb-mcp/server/internal/engine/enginetest"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/session"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Logging.LogDir = t.TempDir()
	cfg.History.Enabled = false
	log, closer, err := logging.New(logging.Config{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })
	mgr := session.NewManager(cfg, log, enginetest.NewFactory(enginetest.New()), nil)
	return NewDispatcher(mgr)
}

func TestDispatchInitializeAndListSessions(t *testing.T) {
	d := testDispatcher(t)

	resp := d.Dispatch(Request{ID: "1", Method: "initialize"})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	sessionID, ok := result["sessionId"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, sessionID)

	resp = d.Dispatch(Request{ID: "2", Method: "listSessions"})
	require.Nil(t, resp.Error)
	sessions := resp.Result.(map[string]interface{})["sessions"].([]string)
	assert.Contains(t, sessions, sessionID)
}

func TestDispatchUnknownMethod(t *testing.T) {
	d := testDispatcher(t)
	resp := d.Dispatch(Request{ID: "1", Method: "bogusMethod"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1001, resp.Error.Code)
}

func TestDispatchMethodNameEquivalence(t *testing.T) {
	d := testDispatcher(t)

	for _, method := range []string{"initialize", "lldb.initialize", "lldb_initialize"} {
		resp := d.Dispatch(Request{ID: "x", Method: method})
		require.Nilf(t, resp.Error, "method %q should resolve", method)
	}
}

func TestDispatchToolsCallEnvelope(t *testing.T) {
	d := testDispatcher(t)

	args, err := json.Marshal(map[string]interface{}{})
	require.NoError(t, err)
	params, err := json.Marshal(map[string]interface{}{"name": "initialize", "arguments": json.RawMessage(args)})
	require.NoError(t, err)

	resp := d.Dispatch(Request{ID: "1", Method: "tools.call", Params: params})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	assert.NotEmpty(t, result["sessionId"])
}

func TestDispatchSessionNotFound(t *testing.T) {
	d := testDispatcher(t)
	params, _ := json.Marshal(map[string]interface{}{"sessionId": "missing"})
	resp := d.Dispatch(Request{ID: "1", Method: "threads", Params: params})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1002, resp.Error.Code)
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d := testDispatcher(t)
	d.table = map[string]handlerFunc{
		"panic": func(mgr *session.Manager, params json.RawMessage) (interface{}, error) {
			panic("boom")
		},
	}

	resp := d.Dispatch(Request{ID: "1", Method: "panic"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 9999, resp.Error.Code)
}

func TestDispatchReadMemoryRejectsNegativeSize(t *testing.T) {
	d := testDispatcher(t)

	initResp := d.Dispatch(Request{ID: "1", Method: "initialize"})
	sessionID := initResp.Result.(map[string]interface{})["sessionId"].(string)

	params, _ := json.Marshal(map[string]interface{}{"sessionId": sessionID, "addr": 0, "size": -1})
	resp := d.Dispatch(Request{ID: "2", Method: "readMemory", Params: params})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1001, resp.Error.Code)
}

func TestDispatchSetBreakpointRoundTrip(t *testing.T) {
	d := testDispatcher(t)

	initResp := d.Dispatch(Request{ID: "1", Method: "initialize"})
	sessionID := initResp.Result.(map[string]interface{})["sessionId"].(string)

	targetParams, _ := json.Marshal(map[string]interface{}{"sessionId": sessionID, "file": "/bin/true"})
	targetResp := d.Dispatch(Request{ID: "2", Method: "createTarget", Params: targetParams})
	require.Nil(t, targetResp.Error)

	bpParams, _ := json.Marshal(map[string]interface{}{"sessionId": sessionID, "symbol": "main"})
	bpResp := d.Dispatch(Request{ID: "3", Method: "setBreakpoint", Params: bpParams})
	require.Nil(t, bpResp.Error)
	bpID := bpResp.Result.(map[string]interface{})["breakpointId"]
	assert.NotZero(t, bpID)

	listParams, _ := json.Marshal(map[string]interface{}{"sessionId": sessionID})
	listResp := d.Dispatch(Request{ID: "4", Method: "listBreakpoints", Params: listParams})
	require.Nil(t, listResp.Error)
	breakpoints := listResp.Result.(map[string]interface{})["breakpoints"]
	assert.NotEmpty(t, breakpoints)
}
