package transport

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/depgraph"
	"github.com/cedarhh/rsheet/internal/evalengine"
	"github.com/cedarhh/rsheet/internal/metrics"
)

// wiredPipe builds a handler bound to one end of an in-memory connection
// with a live Engine behind it, and returns the other end for the test to
// speak the wire protocol against.
func wiredPipe(t *testing.T) net.Conn {
	t.Helper()
	store := cellstore.New()
	graph := depgraph.New()
	eng := evalengine.New(store, graph, metrics.New(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go eng.Run(ctx)

	client, server := net.Pipe()
	h := newHandler(server, store, eng.Queue, metrics.New())
	go h.run()
	t.Cleanup(func() { client.Close() })
	return client
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line[:len(line)-1]
}

func TestHandlerLiteralAssignmentAndGet(t *testing.T) {
	conn := wiredPipe(t)
	r := bufio.NewReader(conn)

	_, err := conn.Write([]byte("set A1 5\n"))
	require.NoError(t, err)

	_, err = conn.Write([]byte("get A1\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line := readLine(t, r)
	require.Equal(t, "Value(A1, 5)", line)
}

func TestHandlerUnsupportedCommand(t *testing.T) {
	conn := wiredPipe(t)
	r := bufio.NewReader(conn)

	_, err := conn.Write([]byte("foo bar\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line := readLine(t, r)
	require.Equal(t, "Error(Unsupported Command)", line)
}

func TestHandlerMalformedGetKey(t *testing.T) {
	conn := wiredPipe(t)
	r := bufio.NewReader(conn)

	_, err := conn.Write([]byte("get A\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line := readLine(t, r)
	require.Equal(t, "Error(Invalid Key Provided: A)", line)
}
