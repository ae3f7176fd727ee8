package formula

import (
	"fmt"

	"github.com/cedarhh/rsheet/internal/domain"
)

// errorMarker threads an Error-valued cell through expr-lang's evaluator: it
// is not a numeric or string type, so any arithmetic or concatenation that
// touches it fails at runtime with a type error, which Run converts back
// into an EvaluationError CellValue — the mechanism by which a formula that
// depends on another error-valued cell itself becomes an error.
type errorMarker string

// nativeValue converts a domain.CellValue into the Go value handed to
// expr-lang: nil for Empty (so AllowUndefinedVariables-style "treat as
// empty" semantics apply uniformly whether a variable is merely unbound or
// explicitly holds Empty), int64 for Int, string for String, errorMarker for
// Error.
func nativeValue(v domain.CellValue) any {
	switch v.Kind {
	case domain.KindEmpty:
		return nil
	case domain.KindInt:
		return v.Int
	case domain.KindString:
		return v.Str
	case domain.KindError:
		return errorMarker(v.Err)
	default:
		return nil
	}
}

// nativeBinding converts a domain.Binding into the env value expr-lang sees
// for one variable token: a bare scalar, or a slice/slice-of-slices for
// Vector/Matrix so range-aware builtins like sum can walk them.
func nativeBinding(b domain.Binding) any {
	switch b.Kind {
	case domain.BindScalar:
		return nativeValue(b.Scalar)
	case domain.BindVector:
		out := make([]any, len(b.Vector))
		for i, v := range b.Vector {
			out[i] = nativeValue(v)
		}
		return out
	case domain.BindMatrix:
		out := make([]any, len(b.Matrix))
		for i, col := range b.Matrix {
			inner := make([]any, len(col))
			for j, v := range col {
				inner[j] = nativeValue(v)
			}
			out[i] = inner
		}
		return out
	default:
		return nil
	}
}

// cellValueFromNative converts an expr-lang evaluation result back into a
// domain.CellValue. Only the four CellValue kinds are ever stored; anything
// else (e.g. a bool from a comparison) is rendered as a String so it still
// reaches the client rather than being silently dropped.
func cellValueFromNative(out any) domain.CellValue {
	switch v := out.(type) {
	case nil:
		return domain.Empty
	case int64:
		return domain.Int(v)
	case int:
		return domain.Int(int64(v))
	case float64:
		if v == float64(int64(v)) {
			return domain.Int(int64(v))
		}
		return domain.String(fmt.Sprintf("%g", v))
	case string:
		return domain.String(v)
	case bool:
		return domain.String(fmt.Sprintf("%t", v))
	case errorMarker:
		return domain.Error(string(v))
	default:
		return domain.String(fmt.Sprintf("%v", v))
	}
}

// flattenArgs walks sum/count/avg's variadic arguments (each either a bare
// scalar or a []any / []any-of-[]any produced by nativeBinding) into one
// flat list, preserving the column-major order nativeBinding built them in.
func flattenArgs(args []any) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case []any:
			out = append(out, flattenArgs(v)...)
		default:
			out = append(out, v)
		}
	}
	return out
}
