package validator

import (
	"fmt"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

// ScaleValidator checks scale definitions produced by the authoring side
// before they are loaded into the registry. Interpretation ranges are not
// checked for overlaps or gaps and duplicate mapping labels are allowed.
type ScaleValidator struct {
	parent *Validator
}

// NewScaleValidator creates a new scale validator
func NewScaleValidator(parent *Validator) *ScaleValidator {
	return &ScaleValidator{parent: parent}
}

// ValidateScale validates a single scale's fields
func (v *ScaleValidator) ValidateScale(scale *models.Scale) error {
	if err := v.parent.ValidateStruct(scale); err != nil {
		return fmt.Errorf("scale %q: %w", scale.ID, err)
	}
	return nil
}

// ValidateDefinitions validates scales, items and mappings together,
// including the references between them.
func (v *ScaleValidator) ValidateDefinitions(scales []models.Scale, items []models.ScaleItem, mappings []models.ResponseMapping) error {
	if len(scales) == 0 {
		return fmt.Errorf("at least one scale must be defined")
	}

	scaleIDs := make(map[string]bool, len(scales))
	for i := range scales {
		if err := v.ValidateScale(&scales[i]); err != nil {
			return err
		}
		if scaleIDs[scales[i].ID] {
			return fmt.Errorf("duplicate scale id %q", scales[i].ID)
		}
		scaleIDs[scales[i].ID] = true
	}

	itemIDs := make(map[string]bool, len(items))
	itemNumbers := make(map[string]map[int]bool)
	for i := range items {
		item := &items[i]
		if err := v.parent.ValidateStruct(item); err != nil {
			return fmt.Errorf("item %q: %w", item.ID, err)
		}
		if !scaleIDs[item.ScaleID] {
			return fmt.Errorf("item %q references unknown scale %q", item.ID, item.ScaleID)
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate item id %q", item.ID)
		}
		itemIDs[item.ID] = true

		if itemNumbers[item.ScaleID] == nil {
			itemNumbers[item.ScaleID] = make(map[int]bool)
		}
		if itemNumbers[item.ScaleID][item.ItemNumber] {
			return fmt.Errorf("scale %q has more than one item number %d", item.ScaleID, item.ItemNumber)
		}
		itemNumbers[item.ScaleID][item.ItemNumber] = true
	}

	for i := range mappings {
		mapping := &mappings[i]
		if err := v.parent.ValidateStruct(mapping); err != nil {
			return fmt.Errorf("response mapping %q: %w", mapping.ID, err)
		}
		if !itemIDs[mapping.ScaleItemID] {
			return fmt.Errorf("response mapping %q references unknown item %q", mapping.ID, mapping.ScaleItemID)
		}
	}

	return nil
}
