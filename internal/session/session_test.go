package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lldb-mcp/server/internal/config"
	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/engine/enginetest"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/mcperr"
)

func testManager(t *testing.T, fake *enginetest.Fake, mutate func(*config.Config)) *Manager {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Logging.LogDir = t.TempDir()
	cfg.History.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	log, closer, err := logging.New(logging.Config{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })
	return NewManager(cfg, log, enginetest.NewFactory(fake), nil)
}

func TestSessionLifecycle(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)

	id, err := mgr.CreateSession()
	require.NoError(t, err)
	assert.Contains(t, mgr.ListSessions(), id)

	require.NoError(t, mgr.TerminateSession(id))
	assert.NotContains(t, mgr.ListSessions(), id)

	err = mgr.TerminateSession(id)
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.SessionNotFound, derr.Code)
}

func TestUnknownSessionFailsSessionNotFound(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	_, err := mgr.CreateTarget("does-not-exist", "/bin/true", "", "", "")
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.SessionNotFound, derr.Code)
}

func TestCreateTargetEnforcesAllowedRoot(t *testing.T) {
	root := t.TempDir()
	mgr := testManager(t, enginetest.New(), func(c *config.Config) {
		c.Policy.AllowedRoot = root
	})
	id, err := mgr.CreateSession()
	require.NoError(t, err)

	_, err = mgr.CreateTarget(id, "/tmp/definitely-outside-the-root/bin", "", "", "")
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.TargetOutsideAllowedRoot, derr.Code)

	// A path under the root passes the policy check.
	_, err = mgr.CreateTarget(id, filepath.Join(root, "bin"), "", "", "")
	require.NoError(t, err)
}

func TestCreateTargetThenLaunch(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)

	res, err := mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Triple)
	assert.Contains(t, res.Transcript, "(lldb) target create")
	// The transcript carries the command object's own output, not just the
	// prompt line.
	assert.Contains(t, res.Transcript, "Current executable set to")

	launchRes, err := mgr.Launch(id, nil, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), launchRes.PID)
	assert.Contains(t, launchRes.Transcript, "Process 4242 launched")

	events, err := mgr.PollEvents(id, 0)
	require.NoError(t, err)
	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "targetCreated")
	assert.Contains(t, types, "processLaunched")
}

func TestLaunchRequiresTarget(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)

	_, err = mgr.Launch(id, nil, nil, "", nil)
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.TargetMissing, derr.Code)
}

func TestLaunchDeniedByPolicyHasNoSideEffects(t *testing.T) {
	mgr := testManager(t, enginetest.New(), func(c *config.Config) {
		c.Policy.AllowLaunch = false
	})
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, _ = mgr.CreateTarget(id, "/bin/true", "", "", "")

	_, err = mgr.Launch(id, nil, nil, "", nil)
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.LaunchNotAllowed, derr.Code)

	_, err = mgr.Threads(id)
	require.Error(t, err)
	derr, ok = mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.ProcessMissing, derr.Code)
}

func TestAttachRequiresPidOrName(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)

	_, err = mgr.Attach(id, 0, "")
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.InvalidParams, derr.Code)
}

func TestBreakpointRoundTrip(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)

	res, err := mgr.SetBreakpoint(id, "", 0, "main", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Transcript, "(lldb) breakpoint set --name \"main\"")
	assert.Contains(t, res.Transcript, "Breakpoint 1: where = target`main")

	list, err := mgr.ListBreakpoints(id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)
	assert.True(t, list[0].Enabled)
	assert.Equal(t, 0, list[0].HitCount)

	enabled := false
	require.NoError(t, mgr.UpdateBreakpoint(id, res.ID, &enabled, nil, nil))
	list, err = mgr.ListBreakpoints(id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Enabled)

	require.NoError(t, mgr.DeleteBreakpoint(id, res.ID))
	list, err = mgr.ListBreakpoints(id)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSetBreakpointRequiresOneLocator(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)

	_, err = mgr.SetBreakpoint(id, "", 0, "", nil)
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.InvalidParams, derr.Code)
}

func TestWatchpointRoundTripEmitsEventsInOrder(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	_, _ = mgr.PollEvents(id, 0)

	wpID, err := mgr.SetWatchpoint(id, 0x1000, 4, true, true)
	require.NoError(t, err)

	list, err := mgr.ListWatchpoints(id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, wpID, list[0].ID)

	require.NoError(t, mgr.DeleteWatchpoint(id, wpID))
	list, err = mgr.ListWatchpoints(id)
	require.NoError(t, err)
	assert.Empty(t, list)

	events, err := mgr.PollEvents(id, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "watchpointSet", events[0].Type)
	assert.Equal(t, "watchpointDeleted", events[1].Type)
}

func TestContinueOnRunningProcessReturnsOKWithoutError(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	_, err = mgr.Launch(id, nil, nil, "", nil)
	require.NoError(t, err)

	// First continue starts the (already-stopped) process running.
	_, err = mgr.ContinueProcess(id)
	require.NoError(t, err)

	// Second continue finds it already running and must not error.
	transcript, err := mgr.ContinueProcess(id)
	require.NoError(t, err)
	assert.Contains(t, transcript, "process is already running")
}

func TestMemoryRoundTrip(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	_, err = mgr.Launch(id, nil, nil, "", nil)
	require.NoError(t, err)

	written, err := mgr.WriteMemory(id, 0x2000, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, 4, written)

	hexBytes, err := mgr.ReadMemory(id, 0x2000, 4)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hexBytes)
}

func TestEngineUnavailableSessionDegrades(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Logging.LogDir = t.TempDir()
	cfg.History.Enabled = false
	log, closer, err := logging.New(logging.Config{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	mgr := NewManager(cfg, log, func(sessionID string) (engine.Debugger, error) {
		return nil, errEngineCreateFailed
	}, nil)

	id, err := mgr.CreateSession()
	require.NoError(t, err)
	assert.Contains(t, mgr.ListSessions(), id)

	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.EngineUnavailable, derr.Code)

	require.NoError(t, mgr.TerminateSession(id))
}

var errEngineCreateFailed = errors.New("engine create failed")

func TestRestartRelaunchesWithCapturedParameters(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	_, err = mgr.Launch(id, []string{"--flag"}, map[string]string{"K": "V"}, "/tmp", nil)
	require.NoError(t, err)

	res, err := mgr.Restart(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), res.PID)

	// The process survives the restart as far as the manager is concerned.
	threads, err := mgr.Threads(id)
	require.NoError(t, err)
	assert.NotEmpty(t, threads)
}

func TestRestartRequiresTarget(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)

	_, err = mgr.Restart(id)
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.TargetMissing, derr.Code)
}

func TestStepRecordsInterpreterOutput(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	_, err = mgr.Launch(id, nil, nil, "", nil)
	require.NoError(t, err)

	transcript, err := mgr.StepOver(id)
	require.NoError(t, err)
	assert.Contains(t, transcript, "(lldb) thread step-over")
	assert.Contains(t, transcript, "Process 4242 stopped")
}

func TestSignalRequiresProcess(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)

	err = mgr.Signal(id, 15)
	require.Error(t, err)
	derr, ok := mcperr.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperr.ProcessMissing, derr.Code)
}

func TestEvaluateExtractsValueAndAppendsTranscript(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, err = mgr.CreateTarget(id, "/bin/true", "", "", "")
	require.NoError(t, err)
	_, err = mgr.Launch(id, nil, nil, "", nil)
	require.NoError(t, err)

	res, err := mgr.Evaluate(id, "1+1", nil)
	require.NoError(t, err)
	assert.Equal(t, "2", res.Value)
	assert.Contains(t, res.Transcript, "(lldb) expr 1+1")
}

func TestCommandAlwaysEmitsTranscriptEvent(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, _ = mgr.PollEvents(id, 0)

	res, err := mgr.Command(id, "version")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Contains(t, res.Transcript, "(lldb) version")

	events, err := mgr.PollEvents(id, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "transcript", events[0].Type)
	assert.Equal(t, res.Transcript, events[0].Data["text"])
}

func TestPollEventsHonorsLimitAndOrder(t *testing.T) {
	mgr := testManager(t, enginetest.New(), nil)
	id, err := mgr.CreateSession()
	require.NoError(t, err)
	_, _ = mgr.PollEvents(id, 0)

	for _, cmd := range []string{"one", "two", "three"} {
		_, err := mgr.Command(id, cmd)
		require.NoError(t, err)
	}

	first, err := mgr.PollEvents(id, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Contains(t, first[0].Data["text"], "one")
	assert.Contains(t, first[1].Data["text"], "two")

	rest, err := mgr.PollEvents(id, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Contains(t, rest[0].Data["text"], "three")
}
