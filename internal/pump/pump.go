// Package pump runs the per-session Event Pump: a goroutine that drains the
// Engine Adapter's native event channel, classifies each notification, and
// deposits it into the session's Event Buffer. It is the producer half of
// the producer/consumer split the session design separates from
// pollEvents (the consumer, driven only by RPC calls).
package pump

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/eventbuf"
	"github.com/lldb-mcp/server/internal/logging"
)

// stopBound is the default maximum time Stop will wait for the pump
// goroutine to exit before giving up and letting the caller proceed with
// the rest of session teardown regardless.
const stopBound = time.Second

// Pump owns one background goroutine per session for as long as the
// session's Debugger is valid.
type Pump struct {
	sessionID   string
	debugger    engine.Debugger
	buffer      *eventbuf.Buffer
	log         *logging.Logger
	stopTimeout time.Duration

	wg   sync.WaitGroup
	once sync.Once
	done chan struct{}
}

// New starts a Pump for sessionID. If debugger is not Valid(), New returns
// nil immediately: a session with no native engine has no events to pump.
// stopTimeout bounds the Stop join; zero or negative selects the default.
func New(sessionID string, debugger engine.Debugger, buffer *eventbuf.Buffer, log *logging.Logger, stopTimeout time.Duration) *Pump {
	if debugger == nil || !debugger.Valid() {
		return nil
	}
	if stopTimeout <= 0 {
		stopTimeout = stopBound
	}
	p := &Pump{sessionID: sessionID, debugger: debugger, buffer: buffer, log: log, stopTimeout: stopTimeout, done: make(chan struct{})}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Pump) run() {
	defer p.wg.Done()
	p.log.Debug("pump.started", map[string]interface{}{"sessionId": p.sessionID})
	for ev := range p.debugger.Events() {
		p.classify(ev)
	}
	p.log.Debug("pump.stopped", map[string]interface{}{"sessionId": p.sessionID})
}

// classify turns one native notification into zero or more Event Buffer
// entries. The cgo shim forwards raw JSON-lines under type "raw"; a fake
// test Debugger may instead push already-classified events directly.
func (p *Pump) classify(ev engine.NativeEvent) {
	if ev.Type != "raw" {
		p.buffer.Push(eventbuf.Event{Type: ev.Type, SessionID: p.sessionID, Data: ev.Data, Timestamp: ev.Timestamp})
		return
	}
	lines, ok := ev.Data["lines"].(string)
	if !ok {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(lines, "\n"), "\n") {
		if line == "" {
			continue
		}
		var raw struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			p.log.Warn("pump.decode_failed", map[string]interface{}{"sessionId": p.sessionID, "error": err.Error()})
			continue
		}
		p.buffer.Push(eventbuf.Event{Type: raw.Type, SessionID: p.sessionID, Data: raw.Data, Timestamp: ev.Timestamp})
	}
}

// Stop waits up to the configured stop timeout for the pump goroutine to
// exit, then returns regardless. Callers invoke this after closing the
// Debugger, which closes its Events() channel and unblocks run; but a
// wedged native call (the engine hung mid-Events send) must not hang
// terminate forever, so the join is bounded and the caller proceeds with
// the rest of teardown either way.
func (p *Pump) Stop() {
	p.once.Do(func() {
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	})
	select {
	case <-p.done:
	case <-time.After(p.stopTimeout):
		p.log.Warn("pump.stop_timeout", map[string]interface{}{"sessionId": p.sessionID})
	}
}

// PushTranscript deposits a synthetic "transcript" event, used by session
// operations that write to the transcript outside of the native listener
// loop so remote observers see every console command without file access.
func PushTranscript(buffer *eventbuf.Buffer, sessionID, text string) {
	buffer.Push(eventbuf.Event{Type: "transcript", SessionID: sessionID, Data: map[string]interface{}{"text": text}})
}
