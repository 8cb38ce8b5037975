// Package tools synthesizes outputs for the function tool calls the remote
// assistant pauses on. Each tool is a pure function over already-parsed
// arguments, closed over the product catalog.
package tools

import "liftassist-backend/internal/catalog"

// Func produces a JSON-serializable tool output from parsed call arguments.
type Func func(args map[string]any) any

// Registry maps tool names to their output synthesizers.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry(cat *catalog.Catalog) *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.funcs[ToolGenerateFilters] = generateFilters()
	r.funcs[ToolRecommendProducts] = recommendProducts(cat)
	return r
}

// Dispatch runs the named tool. Unknown tool names pass their arguments
// through unchanged.
func (r *Registry) Dispatch(name string, args map[string]any) any {
	if fn, ok := r.funcs[name]; ok {
		return fn(args)
	}
	return args
}
