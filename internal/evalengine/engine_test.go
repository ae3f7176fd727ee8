package evalengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/depgraph"
	"github.com/cedarhh/rsheet/internal/domain"
	"github.com/cedarhh/rsheet/internal/metrics"
)

// harness wires a fresh Store/Graph/Engine and runs the engine loop for the
// lifetime of the test, giving each test a blocking set() helper that mimics
// a handler enqueuing a Transaction and waiting on its reply.
type harness struct {
	store *cellstore.Store
	graph *depgraph.Graph
	eng   *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: cellstore.New(),
		graph: depgraph.New(),
	}
	h.eng = New(h.store, h.graph, metrics.New(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	go h.eng.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func (h *harness) set(t *testing.T, target, source string) domain.Reply {
	t.Helper()
	tx := NewTransaction(target, source)
	select {
	case h.eng.Queue <- tx:
	case <-time.After(time.Second):
		t.Fatal("engine queue did not accept transaction")
	}
	select {
	case reply := <-tx.Reply:
		return reply
	case <-time.After(time.Second):
		t.Fatal("engine did not reply")
		return domain.Reply{}
	}
}

func (h *harness) get(coord domain.CellCoord) domain.Reply {
	rec := h.store.Get(coord)
	if rec.HasExpr() && rec.Value.IsError() {
		return domain.ErrorReply(rec.Value.Err)
	}
	return domain.ValueReply(coord.String(), rec.Value)
}

func TestScenarioLiteralAssignment(t *testing.T) {
	h := newHarness(t)
	reply := h.set(t, "A1", "5")
	assert.Equal(t, domain.NoReply, reply)

	got := h.get(domain.CellCoord{Col: 1, Row: 1})
	assert.Equal(t, domain.ValueReply("A1", domain.Int(5)), got)
}

func TestScenarioSimpleFormula(t *testing.T) {
	h := newHarness(t)
	h.set(t, "A1", "5")
	h.set(t, "B1", "=A1+2")

	b1 := domain.CellCoord{Col: 2, Row: 1}
	assert.Equal(t, domain.ValueReply("B1", domain.Int(7)), h.get(b1))

	h.set(t, "A1", "10")
	assert.Equal(t, domain.ValueReply("B1", domain.Int(12)), h.get(b1))
}

func TestScenarioRangeFormula(t *testing.T) {
	h := newHarness(t)
	h.set(t, "A1", "1")
	h.set(t, "A2", "2")
	h.set(t, "A3", "3")
	h.set(t, "B1", "=sum(A1_A3)")

	b1 := domain.CellCoord{Col: 2, Row: 1}
	assert.Equal(t, domain.ValueReply("B1", domain.Int(6)), h.get(b1))

	h.set(t, "A2", "20")
	assert.Equal(t, domain.ValueReply("B1", domain.Int(24)), h.get(b1))
}

func TestScenarioSelfReference(t *testing.T) {
	h := newHarness(t)
	h.set(t, "A1", "=A1")

	a1 := domain.CellCoord{Col: 1, Row: 1}
	got := h.get(a1)
	require.Equal(t, domain.ReplyError, got.Kind)
	assert.Equal(t, "Cell A1 is self-referential", got.Message)
}

func TestScenarioTwoNodeCycleWithDownstream(t *testing.T) {
	h := newHarness(t)
	h.set(t, "A1", "=B1")
	h.set(t, "B1", "=A1")
	h.set(t, "C1", "=A1+1")

	a1 := domain.CellCoord{Col: 1, Row: 1}
	b1 := domain.CellCoord{Col: 2, Row: 1}
	c1 := domain.CellCoord{Col: 3, Row: 1}

	assert.Equal(t, "Cell A1 is self-referential", h.get(a1).Message)
	assert.Equal(t, "Cell B1 is self-referential", h.get(b1).Message)
	assert.Equal(t, "Cell C1 is self-referential", h.get(c1).Message)

	h.set(t, "A1", "4")

	assert.Equal(t, domain.ValueReply("A1", domain.Int(4)), h.get(a1))
	assert.Equal(t, domain.ValueReply("B1", domain.Int(4)), h.get(b1))
	assert.Equal(t, domain.ValueReply("C1", domain.Int(5)), h.get(c1))
}

func TestScenarioMalformedTarget(t *testing.T) {
	h := newHarness(t)
	reply := h.set(t, "1A", "5")
	require.Equal(t, domain.ReplyError, reply.Kind)
	assert.Equal(t, "Invalid Key Provided: 1A", reply.Message)
}

func TestIdempotentResetMatchesEdgeSet(t *testing.T) {
	h := newHarness(t)
	h.set(t, "A1", "1")
	h.set(t, "B1", "=A1")
	b1 := domain.CellCoord{Col: 2, Row: 1}
	a1 := domain.CellCoord{Col: 1, Row: 1}

	before := h.get(b1)
	h.set(t, "B1", "=A1")
	after := h.get(b1)
	assert.Equal(t, before, after)
	assert.ElementsMatch(t, []domain.CellCoord{a1}, h.graph.InDegree(b1))
}
