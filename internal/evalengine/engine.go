package evalengine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/depgraph"
	"github.com/cedarhh/rsheet/internal/domain"
	"github.com/cedarhh/rsheet/internal/formula"
	"github.com/cedarhh/rsheet/internal/metrics"
)

// Engine is the single-writer loop: the sole consumer of Queue, and the
// sole writer of both the Cell Store and the Dependency Graph it was
// constructed with.
type Engine struct {
	store   *cellstore.Store
	graph   *depgraph.Graph
	metrics *metrics.Collector

	// Queue is the FIFO of pending Transactions. Handlers send on it and
	// never receive from it; only Run drains it. Closing Queue is how the
	// engine is told to stop: it happens after the acceptor has stopped and
	// every handler has exited.
	Queue chan *Transaction
}

// New builds an Engine over store and graph, with a queue of the given
// capacity (0 makes it unbuffered, still correct — just less concurrency
// headroom between enqueue and dequeue).
func New(store *cellstore.Store, graph *depgraph.Graph, m *metrics.Collector, queueSize int) *Engine {
	return &Engine{
		store:   store,
		graph:   graph,
		metrics: m,
		Queue:   make(chan *Transaction, queueSize),
	}
}

// Run drains Queue in FIFO order until it is closed or ctx is cancelled,
// processing exactly one Transaction at a time — the engine's entire
// concurrency story is "there is only ever one goroutine touching the
// store and graph as a writer".
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case tx, ok := <-e.Queue:
			if !ok {
				return
			}
			e.process(tx)
		case <-ctx.Done():
			return
		}
	}
}

// process parses the target, resolves the expression's dependencies,
// stores the cell, updates the dependency graph, and recomputes everything
// downstream — one Transaction at a time, end to end. An internal
// invariant violation during recomputation is a programmer error, not a
// user-induced condition; it is recovered here so one bad transaction
// cannot take down the engine goroutine.
func (e *Engine) process(tx *Transaction) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("target", tx.Target).
				Msg("evaluation engine recovered from panic")
			tx.respond(domain.ErrorReply(fmt.Sprintf("internal error processing %s", tx.Target)))
			e.metrics.TransactionErrored()
		}
	}()

	// Step 1: parse target.
	target, err := domain.ParseCellID(tx.Target)
	if err != nil {
		tx.respond(domain.ErrorReply(domain.NewParseError(tx.Target).WireMessage()))
		e.metrics.TransactionErrored()
		return
	}

	// Step 2: build a Runner.
	runner := formula.NewRunner(tx.Source)

	// Step 3: resolve referenced variables into concrete deps.
	tokens := runner.Variables()
	var deps []domain.CellCoord
	for _, tok := range tokens {
		rt, perr := resolveToken(tok)
		if perr != nil {
			tx.respond(domain.ErrorReply(perr.WireMessage()))
			e.metrics.TransactionErrored()
			return
		}
		deps = append(deps, rt.coords...)
	}

	// Step 4: store the cell.
	if len(deps) == 0 {
		value := runner.Run(nil)
		e.store.Put(target, domain.Literal(value))
	} else {
		e.store.Put(target, domain.Derived(domain.Empty, tx.Source))
	}

	// Step 5: update graph.
	e.graph.SetDeps(target, deps)

	// Step 6: plan.
	order, cycle := e.graph.RecomputePlan(target)

	// Step 7: recompute or mark cycle.
	if cycle != nil {
		e.markCycle(cycle)
		e.metrics.CycleDetected()
	} else {
		e.recomputeOrder(order)
	}

	// Step 8: respond.
	tx.respond(domain.NoReply)
	e.metrics.TransactionProcessed()
}

func (e *Engine) markCycle(cycle *depgraph.CycleReport) {
	for _, cell := range cycle.Cells {
		rec := e.store.Get(cell)
		e.store.Put(cell, domain.CellRecord{
			Value: domain.Error(domain.CycleMessage(cell)),
			Expr:  rec.Expr,
		})
	}
}

func (e *Engine) recomputeOrder(order []domain.CellCoord) {
	for _, cell := range order {
		rec := e.store.Get(cell)
		if rec.Expr == nil {
			continue
		}
		e.recomputeCell(cell, *rec.Expr)
	}
}

func (e *Engine) recomputeCell(cell domain.CellCoord, src string) {
	runner := formula.NewRunner(src)
	bindings := make(map[string]domain.Binding)
	for _, tok := range runner.Variables() {
		rt, perr := resolveToken(tok)
		if perr != nil {
			// This source already passed resolution once, when it was first
			// set; a token that fails to resolve now would mean that earlier
			// validation missed something, not a condition recomputation
			// needs to handle. Skip the token rather than aborting the rest
			// of the recomputation.
			continue
		}
		bindings[tok] = rt.binding(e.store)
	}
	value := runner.Run(bindings)
	e.store.Put(cell, domain.Derived(value, src))
}
