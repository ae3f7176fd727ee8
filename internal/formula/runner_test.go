package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarhh/rsheet/internal/domain"
)

func TestVariablesSingleAndRange(t *testing.T) {
	r := NewRunner("A1+2")
	assert.Equal(t, []string{"A1"}, r.Variables())

	r2 := NewRunner("sum(A1_A3)")
	assert.Equal(t, []string{"A1_A3"}, r2.Variables())
}

func TestRunLiteral(t *testing.T) {
	r := NewRunner("5")
	got := r.Run(nil)
	assert.Equal(t, domain.Int(5), got)
}

func TestRunScalarAddition(t *testing.T) {
	r := NewRunner("A1+2")
	bindings := map[string]domain.Binding{
		"A1": domain.ScalarBinding(domain.Int(5)),
	}
	got := r.Run(bindings)
	assert.Equal(t, domain.Int(7), got)
}

func TestRunSumOverVector(t *testing.T) {
	r := NewRunner("sum(A1_A3)")
	bindings := map[string]domain.Binding{
		"A1_A3": domain.VectorBinding([]domain.CellValue{
			domain.Int(1), domain.Int(2), domain.Int(3),
		}),
	}
	got := r.Run(bindings)
	assert.Equal(t, domain.Int(6), got)
}

func TestRunSumOverMatrix(t *testing.T) {
	r := NewRunner("sum(A1_B2)")
	bindings := map[string]domain.Binding{
		"A1_B2": domain.MatrixBinding([][]domain.CellValue{
			{domain.Int(1), domain.Int(2)},
			{domain.Int(3), domain.Int(4)},
		}),
	}
	got := r.Run(bindings)
	assert.Equal(t, domain.Int(10), got)
}

func TestRunUnboundVariableIsEmpty(t *testing.T) {
	r := NewRunner("count(A1, B1)")
	got := r.Run(map[string]domain.Binding{
		"A1": domain.ScalarBinding(domain.Int(5)),
		// B1 intentionally omitted: behaves as Empty.
	})
	assert.Equal(t, domain.Int(1), got)
}

func TestRunPropagatesErrorValue(t *testing.T) {
	r := NewRunner("A1+1")
	bindings := map[string]domain.Binding{
		"A1": domain.ScalarBinding(domain.Error("boom")),
	}
	got := r.Run(bindings)
	require.True(t, got.IsError())
}

func TestNewRunnerCompileFailureStillReportsVariables(t *testing.T) {
	r := NewRunner("A1 +")
	assert.Equal(t, []string{"A1"}, r.Variables())
	got := r.Run(map[string]domain.Binding{"A1": domain.ScalarBinding(domain.Int(1))})
	assert.True(t, got.IsError())
}
