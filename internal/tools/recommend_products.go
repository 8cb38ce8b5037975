package tools

import (
	"fmt"

	"liftassist-backend/internal/catalog"
)

const ToolRecommendProducts = "recommend_products"

const maxHighlights = 3

// recommendProducts validates each recommended product id against the catalog
// and enriches every recommendation with the matched record's real attributes.
// Invalid ids are replaced deterministically by cyclic index into the valid id
// list so the assistant always receives resolvable products. Missing
// explanation and confidence fields get the same defaults as generate_filters.
func recommendProducts(cat *catalog.Catalog) Func {
	return func(args map[string]any) any {
		validIDs := cat.ValidIDs()

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

		rawRecs, _ := args["recommendations"].([]any)
		enriched := make([]map[string]any, 0, len(rawRecs))
		for i, raw := range rawRecs {
			rec, _ := raw.(map[string]any)
			if rec == nil {
				rec = map[string]any{}
			}

			id, _ := rec["productId"].(string)
			product, err := cat.GetByID(id)
			if err != nil {
				id = validIDs[i%len(validIDs)]
				product, _ = cat.GetByID(id)
			}

			merged := make(map[string]any, len(rec)+7)
			for k, v := range rec {
				merged[k] = v
			}
			merged["productId"] = product.ID
			merged["modelName"] = product.ModelName
			merged["loadCapacity"] = product.LoadCapacity
			merged["powerSource"] = product.PowerSource
			merged["operatingEnvironment"] = product.OperatingEnvironment
			merged["highlights"] = topTags(product)
			merged["primaryBenefit"] = primaryBenefit(product)
			enriched = append(enriched, merged)
		}
		out["recommendations"] = enriched
		return out
	}
}

func topTags(p *catalog.Product) []string {
	tags := p.SemanticTags
	if len(tags) > maxHighlights {
		tags = tags[:maxHighlights]
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func primaryBenefit(p *catalog.Product) string {
	return fmt.Sprintf("%d kg load capacity with %s power for %s operation",
		p.LoadCapacity, p.PowerSource, p.OperatingEnvironment)
}
