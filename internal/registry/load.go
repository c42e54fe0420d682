package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
)

//go:embed scales.json
var builtinCatalog []byte

// Catalog is the on-disk form of a registry. Scales may list their items
// inline and share one set of response options across all of those items;
// standalone items and mappings are accepted as well.
type Catalog struct {
	Scales   []CatalogScale           `json:"scales"`
	Items    []models.ScaleItem       `json:"items"`
	Mappings []models.ResponseMapping `json:"mappings"`
}

type CatalogScale struct {
	models.Scale
	Items           []models.ScaleItem `json:"items"`
	ResponseOptions []ResponseOption   `json:"response_options"`
}

// ResponseOption is a text answer shared by every inline item of a scale.
type ResponseOption struct {
	Text    string   `json:"text"`
	Value   float64  `json:"value"`
	Aliases []string `json:"aliases"`
}

// Snapshot expands inline items and shared response options into the flat
// form. Missing item ids default to "{scale}-item-{n}", missing response
// types to likert.
func (c *Catalog) Snapshot() Snapshot {
	var snapshot Snapshot

	for _, cs := range c.Scales {
		scale := cs.Scale
		for i := range scale.InterpretationRanges {
			if scale.InterpretationRanges[i].ScaleID == "" {
				scale.InterpretationRanges[i].ScaleID = scale.ID
			}
			if scale.InterpretationRanges[i].ID == "" {
				scale.InterpretationRanges[i].ID = fmt.Sprintf("%s-range-%d", scale.ID, i+1)
			}
		}
		if scale.TotalItems == 0 {
			scale.TotalItems = len(cs.Items)
		}
		snapshot.Scales = append(snapshot.Scales, scale)

		for _, item := range cs.Items {
			if item.ScaleID == "" {
				item.ScaleID = scale.ID
			}
			if item.ID == "" {
				item.ID = fmt.Sprintf("%s-item-%d", scale.ID, item.ItemNumber)
			}
			if item.ResponseType == "" {
				item.ResponseType = models.ResponseLikert
			}
			snapshot.Items = append(snapshot.Items, item)

			for k, opt := range cs.ResponseOptions {
				snapshot.Mappings = append(snapshot.Mappings, models.ResponseMapping{
					ID:           fmt.Sprintf("%s-opt-%d", item.ID, k+1),
					ScaleItemID:  item.ID,
					TextResponse: opt.Text,
					NumericValue: opt.Value,
					Aliases:      append([]string(nil), opt.Aliases...),
				})
			}
		}
	}

	snapshot.Items = append(snapshot.Items, c.Items...)
	snapshot.Mappings = append(snapshot.Mappings, c.Mappings...)
	return snapshot
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, v *validator.Validator) (*Registry, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode scale catalog: %w", err)
	}

	snapshot := catalog.Snapshot()
	if err := v.Scale().ValidateDefinitions(snapshot.Scales, snapshot.Items, snapshot.Mappings); err != nil {
		return nil, fmt.Errorf("invalid scale catalog: %w", err)
	}

	return New(snapshot), nil
}

// LoadBuiltin returns the registry of the scales shipped with the service.
func LoadBuiltin(v *validator.Validator) (*Registry, error) {
	return Parse(builtinCatalog, v)
}

// LoadFile reads a catalog from path.
func LoadFile(path string, v *validator.Validator) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scale catalog: %w", err)
	}
	return Parse(data, v)
}
