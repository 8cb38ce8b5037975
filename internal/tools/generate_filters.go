package tools

const ToolGenerateFilters = "generate_filters"

const (
	defaultExplanation = "Filters derived from the stated requirements."
	defaultConfidence  = 0.75
)

// generateFilters passes the model-supplied filter arguments through,
// defaulting the explanation and confidence fields when absent.
func generateFilters() Func {
	return func(args map[string]any) any {
		out := make(map[string]any, len(args)+2)
		for k, v := range args {
			out[k] = v
		}
		if _, ok := out["explanation"]; !ok {
			out["explanation"] = defaultExplanation
		}
		if _, ok := out["confidence"]; !ok {
			out["confidence"] = defaultConfidence
		}
		return out
	}
}
