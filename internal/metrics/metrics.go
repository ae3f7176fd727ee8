// Package metrics tracks in-process counters for connections and
// transactions, surfaced only through periodic log lines — no external
// exporter, since the evaluation core is a single in-process engine with no
// multi-hop call chain worth tracing.
package metrics

import "sync"

// Collector is a sync.RWMutex-guarded counter struct, pared down to the
// counters this repository's components actually emit. A nil *Collector is
// valid and a no-op on every method, so callers that don't care about
// metrics can pass nil.
type Collector struct {
	mu sync.RWMutex

	connectionsAccepted int64
	connectionsActive   int64
	transactionsOK      int64
	transactionsErrored int64
	cyclesDetected      int64
}

// New builds an empty Collector.
func New() *Collector {
	return &Collector{}
}

// ConnectionAccepted records a newly accepted client connection.
func (c *Collector) ConnectionAccepted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectionsAccepted++
	c.connectionsActive++
}

// ConnectionClosed records a client connection ending.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectionsActive--
}

// TransactionProcessed records a Transaction that reached a reply without error.
func (c *Collector) TransactionProcessed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactionsOK++
}

// TransactionErrored records a Transaction that ended in a ParseError reply
// or an internal panic recovery.
func (c *Collector) TransactionErrored() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactionsErrored++
}

// CycleDetected records a set that introduced or joined a dependency cycle.
func (c *Collector) CycleDetected() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cyclesDetected++
}

// Snapshot is a point-in-time copy of every counter, for logging or tests.
type Snapshot struct {
	ConnectionsAccepted int64
	ConnectionsActive   int64
	TransactionsOK      int64
	TransactionsErrored int64
	CyclesDetected      int64
}

// Snapshot returns the current counter values. A nil Collector reports a
// zero Snapshot.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		ConnectionsAccepted: c.connectionsAccepted,
		ConnectionsActive:   c.connectionsActive,
		TransactionsOK:      c.transactionsOK,
		TransactionsErrored: c.transactionsErrored,
		CyclesDetected:      c.cyclesDetected,
	}
}
