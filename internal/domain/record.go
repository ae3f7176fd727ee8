package domain

// CellRecord is what the Cell Store maps a CellCoord to: the cell's current
// value plus, when the value was produced by evaluating an expression that
// reads other cells, the source of that expression. Expr is nil for literal
// or nullary assignments, so recomputation can never change such a cell's
// value.
type CellRecord struct {
	Value CellValue
	Expr  *string
}

// EmptyRecord is what Store.Get returns for a coordinate that was never set.
var EmptyRecord = CellRecord{Value: Empty}

// Literal builds a record for a value with no backing expression.
func Literal(v CellValue) CellRecord {
	return CellRecord{Value: v}
}

// Derived builds a record for a value produced by evaluating src.
func Derived(v CellValue, src string) CellRecord {
	return CellRecord{Value: v, Expr: &src}
}

// HasExpr reports whether the record's value is backed by an expression.
func (r CellRecord) HasExpr() bool { return r.Expr != nil }
