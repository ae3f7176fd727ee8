package transport

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/evalengine"
	"github.com/cedarhh/rsheet/internal/metrics"
)

// Acceptor is the one goroutine that blocks on net.Listener.Accept and
// spawns a handler per connection. MaxConns, when positive, bounds
// concurrently active connections; beyond it new connections are closed
// immediately after accept.
type Acceptor struct {
	listener net.Listener
	store    *cellstore.Store
	queue    chan<- *evalengine.Transaction
	metrics  *metrics.Collector
	maxConns int

	wg sync.WaitGroup
}

// NewAcceptor wraps an already-listening net.Listener.
func NewAcceptor(listener net.Listener, store *cellstore.Store, queue chan<- *evalengine.Transaction, m *metrics.Collector, maxConns int) *Acceptor {
	return &Acceptor{
		listener: listener,
		store:    store,
		queue:    queue,
		metrics:  m,
		maxConns: maxConns,
	}
}

// Run accepts connections until ctx is cancelled or the listener is closed,
// spawning one handler goroutine per connection and waiting for all of them
// to exit before returning — the wait is what lets main safely close the
// engine's transaction queue afterward.
func (a *Acceptor) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		a.listener.Close()
	}()

	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}

		if a.maxConns > 0 && a.metrics.Snapshot().ConnectionsActive >= int64(a.maxConns) {
			log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("connection limit reached, rejecting")
			conn.Close()
			continue
		}

		a.metrics.ConnectionAccepted()
		h := newHandler(conn, a.store, a.queue, a.metrics)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			h.run()
		}()
	}

	a.wg.Wait()
}
