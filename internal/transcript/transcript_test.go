package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAlwaysIncludesPromptPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.log")
	w := New(path)

	text := w.Append("target create \"a.out\"", "", "")
	assert.Equal(t, "(lldb) target create \"a.out\"\n", text)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestAppendIncludesOutputAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.log")
	w := New(path)

	text := w.Append("expr 1+1", "(int) $0 = 2\n", "")
	assert.Contains(t, text, "(lldb) expr 1+1\n")
	assert.Contains(t, text, "(int) $0 = 2\n")
}

func TestAppendAccumulatesAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.log")
	w := New(path)

	w.Append("cmd1", "out1\n", "")
	w.Append("cmd2", "out2\n", "")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "cmd1")
	assert.Contains(t, content, "cmd2")
}

func TestAppendIsBestEffortOnBadPath(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing-dir", "transcript.log"))
	assert.NotPanics(t, func() {
		w.Append("cmd", "", "")
	})
}
