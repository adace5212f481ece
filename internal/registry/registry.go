package registry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/riskdash/riskdash/pkg/types"
)

// File is the on-disk registry document.
type File struct {
	Components []types.ComponentRecord `yaml:"components" json:"components"`
}

// Default returns the built-in component dataset.
func Default() []types.ComponentRecord {
	return []types.ComponentRecord{
		{
			Name:                  "High-End GPU",
			SupplierCount:         1,
			LeadTimeMonths:        10,
			Substitutability:      0.2,
			GeoRisk:               0.9,
			InventoryBufferMonths: 1,
			DemandVolatility:      0.8,
		},
		{
			Name:                  "HBM Memory",
			SupplierCount:         2,
			LeadTimeMonths:        9,
			Substitutability:      0.3,
			GeoRisk:               0.8,
			InventoryBufferMonths: 2,
			DemandVolatility:      0.7,
		},
		{
			Name:                  "Network Switch",
			SupplierCount:         4,
			LeadTimeMonths:        4,
			Substitutability:      0.7,
			GeoRisk:               0.3,
			InventoryBufferMonths: 6,
			DemandVolatility:      0.4,
		},
	}
}

// Load reads and validates the registry file at path.
func Load(path string) ([]types.ComponentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a registry document. It accepts either a mapping with a
// "components" list or a bare list of records, in YAML or JSON.
func Parse(data []byte) ([]types.ComponentRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: parse: %w", err)
	}
	if len(doc.Content) == 0 {
		return []types.ComponentRecord{}, nil
	}

	var records []types.ComponentRecord
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("registry: decode components: %w", err)
		}
	case yaml.MappingNode:
		var f File
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("registry: decode components: %w", err)
		}
		records = f.Components
	default:
		return nil, fmt.Errorf("registry: unexpected document at line %d", root.Line)
	}

	if records == nil {
		records = []types.ComponentRecord{}
	}
	if err := Validate(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Validate checks every record against the documented field ranges. All
// problems are joined into one error wrapping types.ErrInvalidInput.
func Validate(records []types.ComponentRecord) error {
	var errs []error
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("components[%d]: name is required", i))
		} else if j, dup := seen[r.Name]; dup {
			errs = append(errs, fmt.Errorf("components[%d] %q: duplicate of components[%d]", i, r.Name, j))
		} else {
			seen[r.Name] = i
		}
		if r.SupplierCount < 1 {
			errs = append(errs, fmt.Errorf("components[%d] %q: supplier_count must be >= 1", i, r.Name))
		}
		if r.LeadTimeMonths < 0 {
			errs = append(errs, fmt.Errorf("components[%d] %q: lead_time_months must be >= 0", i, r.Name))
		}
		if r.InventoryBufferMonths < 0 {
			errs = append(errs, fmt.Errorf("components[%d] %q: inventory_buffer_months must be >= 0", i, r.Name))
		}
		for _, f := range []struct {
			field string
			v     float64
		}{
			{"substitutability", r.Substitutability},
			{"geo_risk", r.GeoRisk},
			{"demand_volatility", r.DemandVolatility},
		} {
			if !(f.v >= 0 && f.v <= 1) {
				errs = append(errs, fmt.Errorf("components[%d] %q: %s must be in [0,1], got %v", i, r.Name, f.field, f.v))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("registry: %w: %w", types.ErrInvalidInput, errors.Join(errs...))
}
