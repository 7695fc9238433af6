package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lldb-mcp/server/internal/config"
	"github.com/lldb-mcp/server/internal/engine/enginetest"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/rpc"
	"github.com/lldb-mcp/server/internal/session"
)

func testDispatcher(t *testing.T) *rpc.Dispatcher {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Logging.LogDir = t.TempDir()
	cfg.History.Enabled = false
	log, closer, err := logging.New(logging.Config{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })
	mgr := session.NewManager(cfg, log, enginetest.NewFactory(enginetest.New()), nil)
	return rpc.NewDispatcher(mgr)
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, closer, err := logging.New(logging.Config{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })
	return log
}

func decodeResponses(t *testing.T, out *bytes.Buffer) []rpc.Response {
	t.Helper()
	var responses []rpc.Response
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var resp rpc.Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServeFramesOneResponsePerRequestLine(t *testing.T) {
	in := strings.NewReader(
		`{"id": "1", "method": "initialize"}` + "\n" +
			`{"id": "2", "method": "listSessions"}` + "\n")
	var out bytes.Buffer

	serveFrames(in, &out, testDispatcher(t), nil, testLogger(t))

	responses := decodeResponses(t, &out)
	require.Len(t, responses, 2)
	assert.Equal(t, "1", responses[0].ID)
	assert.Nil(t, responses[0].Error)
	assert.Equal(t, "2", responses[1].ID)
	assert.Nil(t, responses[1].Error)
}

func TestServeFramesMalformedLineYieldsInvalidParams(t *testing.T) {
	in := strings.NewReader("{this is not json}\n" + `{"id": "2", "method": "listSessions"}` + "\n")
	var out bytes.Buffer

	serveFrames(in, &out, testDispatcher(t), nil, testLogger(t))

	responses := decodeResponses(t, &out)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, 1001, responses[0].Error.Code)
	// The connection stays up after a bad line.
	assert.Nil(t, responses[1].Error)
}

func TestServeFramesSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n\n" + `{"id": "1", "method": "listSessions"}` + "\n")
	var out bytes.Buffer

	serveFrames(in, &out, testDispatcher(t), nil, testLogger(t))

	responses := decodeResponses(t, &out)
	require.Len(t, responses, 1)
	assert.Equal(t, "1", responses[0].ID)
}

func TestServeFramesErrorResponseCarriesCode(t *testing.T) {
	params, err := json.Marshal(map[string]interface{}{"sessionId": "missing"})
	require.NoError(t, err)
	req, err := json.Marshal(rpc.Request{ID: "1", Method: "threads", Params: params})
	require.NoError(t, err)

	var out bytes.Buffer
	serveFrames(bytes.NewReader(append(req, '\n')), &out, testDispatcher(t), nil, testLogger(t))

	responses := decodeResponses(t, &out)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, 1002, responses[0].Error.Code)
}
