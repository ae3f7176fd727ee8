// Package formula is the Expression Adapter: it compiles a cell's raw
// expression source into a Runner that can report its referenced variables
// and, given bindings for those variables, produce a CellValue. Expression
// evaluation is backed by github.com/expr-lang/expr.
package formula

import (
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/cedarhh/rsheet/internal/domain"
)

// programCache memoizes compiled programs by source text. Recomputation
// rebuilds a Runner for the same source on every dependent cell in a
// component, so reusing the compiled form avoids re-parsing identical
// expressions repeatedly.
var programCache = struct {
	mu sync.RWMutex
	m  map[string]compiled
}{m: make(map[string]compiled)}

type compiled struct {
	program *vm.Program
	err     error
}

func compileCached(src string) compiled {
	programCache.mu.RLock()
	c, ok := programCache.m[src]
	programCache.mu.RUnlock()
	if ok {
		return c
	}

	program, err := expr.Compile(src,
		expr.AllowUndefinedVariables(),
		expr.Function("sum", sumFn),
		expr.Function("count", countFn),
		expr.Function("avg", avgFn),
	)
	c = compiled{program: program, err: err}

	programCache.mu.Lock()
	programCache.m[src] = c
	programCache.mu.Unlock()
	return c
}

// Runner is the compiled form of one cell expression. A Runner is safe for
// concurrent read-only use, since Variables and Run never mutate it.
type Runner struct {
	source string
	prog   compiled
}

// NewRunner compiles src. Construction is infallible: a syntactically
// broken expression yields a Runner whose Run always returns an Error
// CellValue. A leading "=" formula marker is stripped before compiling.
func NewRunner(src string) *Runner {
	return &Runner{source: src, prog: compileCached(strings.TrimPrefix(src, "="))}
}

// Variables yields the textual variable references in the expression —
// single cells or ranges — independent of whether the expression compiled,
// since this is a lexical property of the source text, not its AST.
func (r *Runner) Variables() []string {
	return extractVariables(r.source)
}

// Run evaluates the expression against bindings, one per variable token
// from Variables. A token absent from bindings behaves as Empty.
func (r *Runner) Run(bindings map[string]domain.Binding) domain.CellValue {
	if r.prog.err != nil {
		return domain.Error(r.prog.err.Error())
	}

	env := make(map[string]any, len(bindings))
	for token, binding := range bindings {
		env[token] = nativeBinding(binding)
	}

	out, err := expr.Run(r.prog.program, env)
	if err != nil {
		return domain.Error(err.Error())
	}
	return cellValueFromNative(out)
}
