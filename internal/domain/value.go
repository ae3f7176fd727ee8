package domain

import "strconv"

// ValueKind discriminates the CellValue tagged union.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindInt
	KindString
	KindError
)

// CellValue is the tagged union produced by the Expression Adapter and
// stored in the Cell Store: Empty, Int, String, or Error. The engine treats
// Int and String opaquely; only Empty and Error affect control flow.
type CellValue struct {
	Kind ValueKind
	Int  int64
	Str  string
	Err  string
}

// Empty is the zero value cells hold before anything is ever set.
var Empty = CellValue{Kind: KindEmpty}

// Int constructs an integer CellValue.
func Int(v int64) CellValue { return CellValue{Kind: KindInt, Int: v} }

// String constructs a string CellValue.
func String(s string) CellValue { return CellValue{Kind: KindString, Str: s} }

// Error constructs an error-valued CellValue with a diagnostic message.
func Error(msg string) CellValue { return CellValue{Kind: KindError, Err: msg} }

// IsEmpty reports whether the value is the Empty variant.
func (v CellValue) IsEmpty() bool { return v.Kind == KindEmpty }

// IsError reports whether the value is the Error variant.
func (v CellValue) IsError() bool { return v.Kind == KindError }

// Render renders the value for the wire protocol's Value(...) reply body.
func (v CellValue) Render() string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return v.Str
	case KindError:
		return v.Err
	default:
		return ""
	}
}

// BindingKind discriminates the compound forms used as expression bindings.
type BindingKind int

const (
	BindScalar BindingKind = iota
	BindVector
	BindMatrix
)

// Binding is the compound value handed to the Expression Adapter for each
// variable token: a bare scalar, a one-dimensional Vector for a degenerate
// range, or a column-major Matrix for a full rectangular range. Column-major
// order is what keeps a range's flattened form stable regardless of whether
// it is addressed by rows or columns.
type Binding struct {
	Kind   BindingKind
	Scalar CellValue
	Vector []CellValue
	Matrix [][]CellValue
}

// ScalarBinding wraps a single CellValue as a Scalar binding.
func ScalarBinding(v CellValue) Binding {
	return Binding{Kind: BindScalar, Scalar: v}
}

// VectorBinding wraps a flat list of CellValue as a Vector binding.
func VectorBinding(vs []CellValue) Binding {
	return Binding{Kind: BindVector, Vector: vs}
}

// MatrixBinding wraps a column-major grid of CellValue as a Matrix binding.
func MatrixBinding(m [][]CellValue) Binding {
	return Binding{Kind: BindMatrix, Matrix: m}
}

// Flatten returns every scalar value reachable through the binding, in the
// same column-major order the binding was built in. Expression Adapter
// builtins (sum, count, avg, ...) reduce over this flattened form so the
// Vector/Matrix distinction is never observable to a correct expression.
func (b Binding) Flatten() []CellValue {
	switch b.Kind {
	case BindScalar:
		return []CellValue{b.Scalar}
	case BindVector:
		return b.Vector
	case BindMatrix:
		out := make([]CellValue, 0, len(b.Matrix))
		for _, col := range b.Matrix {
			out = append(out, col...)
		}
		return out
	default:
		return nil
	}
}
