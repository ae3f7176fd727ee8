package transport

import (
	"bufio"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/domain"
	"github.com/cedarhh/rsheet/internal/evalengine"
	"github.com/cedarhh/rsheet/internal/metrics"
)

// replyTimeout bounds how long a handler waits for the engine to accept a
// set, and then for its reply, before giving up and answering the client
// with an error reply; the connection stays open. A defensive limit, not a
// spec requirement, since a correctly running engine always replies.
const replyTimeout = 30 * time.Second

// handler owns one client connection: it reads framed (newline-delimited)
// commands, parses them, and either serves a get directly from the Cell
// Store or enqueues a Transaction to the engine and blocks on its one-shot
// reply. Each connection gets its own goroutine; there is no broadcast or
// subscription fan-out, since replies only ever go back to the client that
// issued the command.
type handler struct {
	id      string
	conn    net.Conn
	store   *cellstore.Store
	queue   chan<- *evalengine.Transaction
	metrics *metrics.Collector
}

func newHandler(conn net.Conn, store *cellstore.Store, queue chan<- *evalengine.Transaction, m *metrics.Collector) *handler {
	return &handler{
		id:      uuid.NewString(),
		conn:    conn,
		store:   store,
		queue:   queue,
		metrics: m,
	}
}

// run executes the read-parse-dispatch-write loop until the connection is
// closed or a write fails.
func (h *handler) run() {
	defer h.conn.Close()
	defer h.metrics.ConnectionClosed()

	log.Debug().Str("conn_id", h.id).Str("remote", h.conn.RemoteAddr().String()).Msg("connection accepted")

	writer := bufio.NewWriter(h.conn)
	scanner := bufio.NewScanner(h.conn)
	for scanner.Scan() {
		reply := h.dispatch(scanner.Text())
		if reply.Kind == domain.ReplyNone {
			continue
		}
		if err := h.write(writer, reply.Render()); err != nil {
			transportErr := domain.NewTransportError(h.id, err)
			log.Warn().Str("conn_id", h.id).Err(transportErr).Msg("write failed, closing connection")
			return
		}
	}

	log.Debug().Str("conn_id", h.id).Msg("connection closed")
}

func (h *handler) write(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// dispatch handles one parsed command and returns the reply to write back,
// or a ReplyNone for a successful set.
func (h *handler) dispatch(line string) domain.Reply {
	cmd := ParseCommand(line)
	switch cmd.Kind {
	case CommandGet:
		return h.handleGet(cmd.Target)
	case CommandSet:
		return h.handleSet(cmd.Target, cmd.Expression)
	default:
		return domain.ErrorReply("Unsupported Command")
	}
}

// handleGet bypasses the engine entirely, performing one Cell Store read
// and surfacing the stored Error diagnostic when the cell is both
// expression-bound and in error state.
func (h *handler) handleGet(target string) domain.Reply {
	coord, err := domain.ParseCellID(target)
	if err != nil {
		return domain.ErrorReply(domain.NewParseError(target).WireMessage())
	}
	rec := h.store.Get(coord)
	if rec.HasExpr() && rec.Value.IsError() {
		return domain.ErrorReply(rec.Value.Err)
	}
	return domain.ValueReply(coord.String(), rec.Value)
}

// handleSet enqueues a Transaction and blocks on its one-shot reply: the
// handler suspends on the response channel, guaranteed to observe the
// set's effects once the reply arrives.
func (h *handler) handleSet(target, expression string) domain.Reply {
	tx := evalengine.NewTransaction(target, expression)
	select {
	case h.queue <- tx:
	case <-time.After(replyTimeout):
		return domain.ErrorReply("Internal Error: engine queue unavailable")
	}

	select {
	case reply := <-tx.Reply:
		return reply
	case <-time.After(replyTimeout):
		return domain.ErrorReply("Internal Error: engine did not respond")
	}
}
