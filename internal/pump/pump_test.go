package pump

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/engine/enginetest"
	"github.com/lldb-mcp/server/internal/eventbuf"
	"github.com/lldb-mcp/server/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, closer, err := logging.New(logging.Config{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })
	return log
}

func TestPumpClassifiesDirectEvents(t *testing.T) {
	fake := enginetest.New()
	buf := eventbuf.New(16)
	p := New("sess-1", fake, buf, testLogger(t), 0)
	require.NotNil(t, p)

	fake.Push(engine.NativeEvent{Type: "processStateChanged", Data: map[string]interface{}{"state": int(engine.StateStopped)}})
	require.Eventually(t, func() bool { return buf.Len() == 1 }, time.Second, time.Millisecond)

	events := buf.Drain(10)
	require.Len(t, events, 1)
	assert.Equal(t, "processStateChanged", events[0].Type)
	assert.Equal(t, "sess-1", events[0].SessionID)

	require.NoError(t, fake.Close())
	p.Stop()
}

func TestPumpClassifiesRawJSONLEvents(t *testing.T) {
	fake := enginetest.New()
	buf := eventbuf.New(16)
	p := New("sess-2", fake, buf, testLogger(t), 0)
	require.NotNil(t, p)

	lines := `{"type":"stdout","data":{"text":"hello\n"}}` + "\n" +
		`{"type":"stderr","data":{"text":"oops\n"}}` + "\n"
	fake.Push(engine.NativeEvent{Type: "raw", Data: map[string]interface{}{"lines": lines}})

	require.Eventually(t, func() bool { return buf.Len() == 2 }, time.Second, time.Millisecond)
	events := buf.Drain(10)
	require.Len(t, events, 2)
	assert.Equal(t, "stdout", events[0].Type)
	assert.Equal(t, "stderr", events[1].Type)

	require.NoError(t, fake.Close())
	p.Stop()
}

func TestNewReturnsNilForInvalidDebugger(t *testing.T) {
	fake := enginetest.New()
	require.NoError(t, fake.Close())
	// Closing a fake that reports Valid() == true doesn't make it invalid;
	// exercise the nil-debugger guard directly instead.
	p := New("sess-3", nil, eventbuf.New(4), testLogger(t), 0)
	assert.Nil(t, p)
}

func TestPumpStopBoundsWaitWhenEventsChannelNeverCloses(t *testing.T) {
	fake := enginetest.New()
	buf := eventbuf.New(16)
	p := New("sess-5", fake, buf, testLogger(t), 0)
	require.NotNil(t, p)

	// Never call fake.Close(), so the pump goroutine stays blocked in
	// run()'s range over Events(), simulating a wedged native call.
	start := time.Now()
	p.Stop()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)
	assert.GreaterOrEqual(t, elapsed, stopBound-100*time.Millisecond)
}

func TestPushTranscriptDepositsEvent(t *testing.T) {
	buf := eventbuf.New(4)
	PushTranscript(buf, "sess-4", "(lldb) target create\n")
	events := buf.Drain(10)
	require.Len(t, events, 1)
	assert.Equal(t, "transcript", events[0].Type)
	assert.Equal(t, "(lldb) target create\n", events[0].Data["text"])
}
