package evalengine

import (
	"strings"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/domain"
)

// resolvedToken is one variable token's expansion: the concrete coordinates
// it covers, and (for a range) the endpoints needed to decide Vector vs.
// Matrix shape.
type resolvedToken struct {
	coords  []domain.CellCoord
	isRange bool
	start   domain.CellCoord
	end     domain.CellCoord
}

// resolveToken expands a variable token yielded by formula.Runner.Variables
// into concrete coordinates: a bare token is a single cell, a token
// containing "_" is an inclusive rectangular range.
func resolveToken(token string) (resolvedToken, *domain.ParseError) {
	if strings.Contains(token, "_") {
		start, end, err := domain.ParseRange(token)
		if err != nil {
			return resolvedToken{}, domain.NewParseError(token)
		}
		return resolvedToken{
			coords:  domain.ExpandRange(start, end),
			isRange: true,
			start:   start,
			end:     end,
		}, nil
	}
	c, err := domain.ParseCellID(token)
	if err != nil {
		return resolvedToken{}, domain.NewParseError(token)
	}
	return resolvedToken{coords: []domain.CellCoord{c}}, nil
}

// binding reads the current store value at every coordinate the token
// covers and wraps it into a Scalar, Vector, or column-major Matrix,
// depending on whether the token was a single cell, a one-dimensional
// range, or a full rectangular range.
func (rt resolvedToken) binding(store *cellstore.Store) domain.Binding {
	if !rt.isRange {
		return domain.ScalarBinding(store.Get(rt.coords[0]).Value)
	}
	if domain.IsDegenerate(rt.start, rt.end) {
		vec := make([]domain.CellValue, len(rt.coords))
		for i, c := range rt.coords {
			vec[i] = store.Get(c).Value
		}
		return domain.VectorBinding(vec)
	}

	numCols := colSpan(rt.start, rt.end)
	numRows := len(rt.coords) / numCols
	matrix := make([][]domain.CellValue, numCols)
	idx := 0
	for ci := 0; ci < numCols; ci++ {
		col := make([]domain.CellValue, numRows)
		for ri := 0; ri < numRows; ri++ {
			col[ri] = store.Get(rt.coords[idx]).Value
			idx++
		}
		matrix[ci] = col
	}
	return domain.MatrixBinding(matrix)
}

func colSpan(start, end domain.CellCoord) int {
	lo, hi := start.Col, end.Col
	if lo > hi {
		lo, hi = hi, lo
	}
	return int(hi-lo) + 1
}
