package session

import (
	"github.com/lldb-mcp/server/internal/eventbuf"
	"github.com/lldb-mcp/server/internal/pump"
)

// eventBufEvent builds an eventbuf.Event for sessionID with the given type
// and payload; a small convenience shared by every operation file.
func eventBufEvent(sessionID, eventType string, data map[string]interface{}) eventbuf.Event {
	return eventbuf.Event{Type: eventType, SessionID: sessionID, Data: data}
}

// writeTranscript appends a command/output/error triple to the session's
// transcript file and mirrors it into the Event Buffer as a "transcript"
// event, so the file and the event stream always carry the same text.
// Call with sess.mu already held.
func writeTranscript(sess *Session, command, output, errOutput string) string {
	text := sess.transcript.Append(command, output, errOutput)
	pump.PushTranscript(sess.buffer, sess.ID, text)
	return text
}
