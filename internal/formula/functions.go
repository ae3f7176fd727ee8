package formula

import "fmt"

// sumFn implements the sum(range) builtin. Empty cells contribute 0; an
// Error-valued cell anywhere in the range propagates as the sum's own error.
func sumFn(params ...any) (any, error) {
	var total int64
	for _, v := range flattenArgs(params) {
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		total += n
	}
	return total, nil
}

// countFn counts non-empty cells in its arguments.
func countFn(params ...any) (any, error) {
	var n int64
	for _, v := range flattenArgs(params) {
		if em, ok := v.(errorMarker); ok {
			return nil, fmt.Errorf("%s", string(em))
		}
		if v != nil {
			n++
		}
	}
	return n, nil
}

// avgFn averages the non-empty numeric cells in its arguments.
func avgFn(params ...any) (any, error) {
	values := flattenArgs(params)
	var total int64
	var n int64
	for _, v := range values {
		if v == nil {
			continue
		}
		x, err := asInt(v)
		if err != nil {
			return nil, err
		}
		total += x
		n++
	}
	if n == 0 {
		return int64(0), nil
	}
	return total / n, nil
}

func asInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case errorMarker:
		return 0, fmt.Errorf("%s", string(x))
	default:
		return 0, fmt.Errorf("expected a number, got %v", v)
	}
}
