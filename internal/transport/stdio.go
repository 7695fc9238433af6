package transport

import (
	"io"

	"github.com/lldb-mcp/server/internal/health"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/rpc"
)

// ServeStdio runs the same line-delimited JSON framing as TCPServer but
// over the given reader/writer pair, for embedding the daemon under a
// parent process that speaks the protocol over pipes.
func ServeStdio(r io.Reader, w io.Writer, dispatcher *rpc.Dispatcher, metrics *health.Metrics, log *logging.Logger) {
	serveFrames(r, w, dispatcher, metrics, log.Component("transport.stdio"))
}
