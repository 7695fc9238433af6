package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chtemp moves the test into a temp working directory so Validate's
// directory creation for relative default paths (logs, the history
// database) lands there instead of in the package tree.
func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := chtemp(t)
	t.Setenv("LLDBMCP_LOG_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.True(t, cfg.Policy.AllowLaunch)
	assert.True(t, cfg.Policy.AllowAttach)
	assert.Equal(t, 1024, cfg.Performance.EventBufferCapacity)
	assert.Equal(t, 32, cfg.Performance.DefaultPollLimit)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"server": {"host": "0.0.0.0", "port": 9000}, "logging": {"level": "debug", "format": "json", "log_dir": "` + dir + `"}, "history": {"enabled": false}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.History.Enabled)
	// Untouched groups keep their defaults.
	assert.True(t, cfg.Policy.AllowLaunch)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	dir := chtemp(t)
	t.Setenv("LLDBMCP_LOG_DIR", dir)
	t.Setenv("LLDBMCP_PORT", "9100")
	t.Setenv("LLDBMCP_ALLOW_LAUNCH", "false")
	t.Setenv("LLDBMCP_ALLOWED_ROOT", "/srv/targets")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.False(t, cfg.Policy.AllowLaunch)
	assert.Equal(t, "/srv/targets", cfg.Policy.AllowedRoot)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.LogDir = t.TempDir()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.LogDir = t.TempDir()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestLoadFailsOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestPathHelpers(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.LogDir = "/var/log/lldbmcp"
	assert.Equal(t, "/var/log/lldbmcp/transcript_abc.log", cfg.TranscriptPath("abc"))
	assert.Equal(t, "/var/log/lldbmcp/lldb_abc.log", cfg.EngineLogPath("abc"))
	assert.Equal(t, "/var/log/lldbmcp/app.log", cfg.AppLogPath())
}
