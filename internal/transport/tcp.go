// Package transport implements the two interface-compatible wire
// transports: a TCP line-delimited JSON listener (the canonical transport)
// and a stdio variant of the same framing. Both share one rpc.Dispatcher
// and therefore one session.Manager; there is no per-connection session
// affinity, so any client knowing a session id may drive that session.
package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"

	"github.com/lldb-mcp/server/internal/health"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/rpc"
)

// TCPServer accepts connections on host:port and serves one connection
// handler goroutine per client, each reading/writing newline-delimited JSON
// against the shared Dispatcher.
type TCPServer struct {
	dispatcher *rpc.Dispatcher
	metrics    *health.Metrics
	log        *logging.Logger
	listener   net.Listener
}

// NewTCPServer builds a TCPServer. metrics may be nil to disable RPC
// counters.
func NewTCPServer(dispatcher *rpc.Dispatcher, metrics *health.Metrics, log *logging.Logger) *TCPServer {
	return &TCPServer{dispatcher: dispatcher, metrics: metrics, log: log.Component("transport.tcp")}
}

// Serve listens on addr and blocks, accepting connections until the
// listener is closed (via Close or process shutdown).
func (s *TCPServer) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info("transport.listening", map[string]interface{}{"addr": addr})
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("transport.accept_failed", map[string]interface{}{"error": err.Error()})
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections. In-flight connections finish on
// their own; the Session Manager outlives any single transport connection.
func (s *TCPServer) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer conn.Close()
	serveFrames(conn, conn, s.dispatcher, s.metrics, s.log)
}

// serveFrames is the line-delimited JSON request/response loop shared by
// the TCP and stdio transports: read one JSON object per line, dispatch it,
// write the response as one JSON object per line. Each dispatched request
// is logged as one "rpc.handled" event carrying its id, method and, on
// failure, the error code.
func serveFrames(r io.Reader, w io.Writer, dispatcher *rpc.Dispatcher, metrics *health.Metrics, log *logging.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req rpc.Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(rpc.Response{Error: &rpc.ErrorPayload{Code: 1001, Message: "malformed request line: " + err.Error()}})
			continue
		}
		resp := dispatcher.Dispatch(req)
		if metrics != nil {
			metrics.RecordRPC(req.Method, resp.Error == nil)
		}
		audit := map[string]interface{}{"id": req.ID, "method": req.Method}
		if resp.Error != nil {
			audit["errorCode"] = resp.Error.Code
		}
		log.Info("rpc.handled", audit)
		if err := enc.Encode(resp); err != nil {
			log.Warn("transport.write_failed", map[string]interface{}{"error": err.Error()})
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("transport.read_failed", map[string]interface{}{"error": err.Error()})
	}
}
