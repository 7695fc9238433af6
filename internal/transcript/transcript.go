// Package transcript writes the per-session debugger-console transcript:
// every console command the session issues through the command interpreter
// (target create, launch, attach, breakpoint set, steps, continue, expr) and
// every raw command passthrough, appended as plain text in the same "(lldb) <cmd>\n<output>"
// shape the native console itself would print.
package transcript

import (
	"os"
	"strings"
	"sync"
)

// Writer appends to a single session's transcript file.
type Writer struct {
	mu   sync.Mutex
	path string
}

// New returns a Writer for the transcript file at path. It does not touch
// the file; each Append opens it for append, creating it if necessary.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one command/output/error entry and returns the exact text
// written, which callers fold into their RPC response's "transcript" field.
func (w *Writer) Append(command, output, errOutput string) string {
	var b strings.Builder
	b.WriteString("(lldb) ")
	b.WriteString(command)
	b.WriteString("\n")
	if output != "" {
		b.WriteString(output)
	}
	if errOutput != "" {
		b.WriteString(errOutput)
	}
	text := b.String()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		defer f.Close()
		f.WriteString(text)
	}
	return text
}
