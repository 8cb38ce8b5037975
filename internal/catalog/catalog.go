package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a product id has no matching record.
var ErrNotFound = errors.New("product not found")

//go:embed products.json
var productsJSON []byte

type Dimensions struct {
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Product is a static catalog record. The catalog is loaded once at process
// start and never mutated.
type Product struct {
	ID                   string     `json:"id"`
	ModelName            string     `json:"modelName"`
	PowerSource          string     `json:"powerSource"`
	LoadCapacity         int        `json:"loadCapacity"`
	LiftHeight           int        `json:"liftHeight"`
	TurningRadius        int        `json:"turningRadius"`
	TireType             string     `json:"tireType"`
	OperatingEnvironment string     `json:"operatingEnvironment"`
	SoundLevel           int        `json:"soundLevel"`
	Dimensions           Dimensions `json:"dimensions"`
	ListPrice            int        `json:"listPrice"`
	ComplianceStandards  []string   `json:"complianceStandards"`
	SemanticTags         []string   `json:"semanticTags"`
	Description          string     `json:"description"`
	AisleWidth           int        `json:"aisleWidth"`
	FloorSurface         []string   `json:"floorSurface"`
	LoadType             string     `json:"loadType"`
	Attachments          []string   `json:"attachments"`
	OperatingHours       string     `json:"operatingHours"`
}

// Filters narrows the catalog; zero-valued fields impose no constraint.
type Filters struct {
	PowerSource          string `json:"powerSource,omitempty"`
	LoadCapacity         int    `json:"loadCapacity,omitempty"`
	OperatingEnvironment string `json:"operatingEnvironment,omitempty"`
}

type Catalog struct {
	products []Product
}

// Load parses the embedded product data.
func Load() (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("failed to parse embedded product catalog: %w", err)
	}
	return &Catalog{products: products}, nil
}

// All returns every record in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// GetByID scans for an exact id match.
func (c *Catalog) GetByID(id string) (*Product, error) {
	for i := range c.products {
		if c.products[i].ID == id {
			p := c.products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// GetByFilters retains records matching every set filter field.
func (c *Catalog) GetByFilters(f Filters) []Product {
	var matched []Product
	for _, p := range c.products {
		if f.PowerSource != "" && p.PowerSource != f.PowerSource {
			continue
		}
		if f.LoadCapacity > 0 && p.LoadCapacity < f.LoadCapacity {
			continue
		}
		if f.OperatingEnvironment != "" && p.OperatingEnvironment != f.OperatingEnvironment {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// ValidIDs returns all product ids in catalog order.
func (c *Catalog) ValidIDs() []string {
	ids := make([]string, len(c.products))
	for i, p := range c.products {
		ids[i] = p.ID
	}
	return ids
}
