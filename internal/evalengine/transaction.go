// Package evalengine implements the Evaluation Engine: the single-writer
// loop that consumes a queue of mutation requests, resolving references,
// updating the Dependency Graph, recomputing affected cells, and delivering
// exactly one reply per Transaction.
package evalengine

import "github.com/cedarhh/rsheet/internal/domain"

// Transaction bundles one incoming set request with its one-shot reply
// channel. Created per incoming set, destroyed when the reply is
// delivered. Reply is always buffered to capacity 1 so the engine never
// blocks sending to a handler that has already given up.
type Transaction struct {
	Target string
	Source string
	Reply  chan domain.Reply
}

// NewTransaction builds a Transaction for the given set request.
func NewTransaction(target, source string) *Transaction {
	return &Transaction{Target: target, Source: source, Reply: make(chan domain.Reply, 1)}
}

// respond delivers reply exactly once. A handler that has already walked
// away (its end of Reply dropped, its own goroutine exited) never blocks
// the engine: the channel is buffered, so the send always completes
// immediately regardless of whether anyone ever receives it.
func (t *Transaction) respond(reply domain.Reply) {
	t.Reply <- reply
}
