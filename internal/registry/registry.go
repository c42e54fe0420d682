// Package registry holds the read-only catalog of scales, their items and
// the response mappings of each item. A Registry is built once and never
// mutated afterwards, so it is safe to share between goroutines.
package registry

import (
	"sort"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

// Snapshot is the flat configuration produced by the scale authoring side.
type Snapshot struct {
	Scales   []models.Scale           `json:"scales"`
	Items    []models.ScaleItem       `json:"items"`
	Mappings []models.ResponseMapping `json:"mappings"`
}

type Registry struct {
	order    []string
	scales   map[string]models.Scale
	items    map[string][]models.ScaleItem
	mappings map[string][]models.ResponseMapping
}

// New joins the snapshot into lookup tables: scale by id, items by scale
// (ordered by item number) and mappings by item (snapshot order, which is
// the match order).
func New(snapshot Snapshot) *Registry {
	r := &Registry{
		order:    make([]string, 0, len(snapshot.Scales)),
		scales:   make(map[string]models.Scale, len(snapshot.Scales)),
		items:    make(map[string][]models.ScaleItem, len(snapshot.Scales)),
		mappings: make(map[string][]models.ResponseMapping, len(snapshot.Items)),
	}

	for _, scale := range snapshot.Scales {
		if _, exists := r.scales[scale.ID]; !exists {
			r.order = append(r.order, scale.ID)
		}
		scale.InterpretationRanges = append([]models.InterpretationRange(nil), scale.InterpretationRanges...)
		r.scales[scale.ID] = scale

		var items []models.ScaleItem
		for _, item := range snapshot.Items {
			if item.ScaleID == scale.ID {
				items = append(items, item)
			}
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ItemNumber < items[j].ItemNumber
		})
		r.items[scale.ID] = items
	}

	for _, item := range snapshot.Items {
		var mappings []models.ResponseMapping
		for _, mapping := range snapshot.Mappings {
			if mapping.ScaleItemID == item.ID {
				mapping.Aliases = append([]string(nil), mapping.Aliases...)
				mappings = append(mappings, mapping)
			}
		}
		r.mappings[item.ID] = mappings
	}

	return r
}

// Scales returns all scales in declaration order.
func (r *Registry) Scales() []models.Scale {
	scales := make([]models.Scale, 0, len(r.order))
	for _, id := range r.order {
		scales = append(scales, copyScale(r.scales[id]))
	}
	return scales
}

func (r *Registry) Scale(id string) (models.Scale, bool) {
	scale, ok := r.scales[id]
	if !ok {
		return models.Scale{}, false
	}
	return copyScale(scale), true
}

// Items returns the items of a scale ordered by item number.
func (r *Registry) Items(scaleID string) []models.ScaleItem {
	return append([]models.ScaleItem(nil), r.items[scaleID]...)
}

// Mappings returns the response mappings of one item in match order.
func (r *Registry) Mappings(itemID string) []models.ResponseMapping {
	src := r.mappings[itemID]
	out := make([]models.ResponseMapping, len(src))
	for i, m := range src {
		m.Aliases = append([]string(nil), m.Aliases...)
		out[i] = m
	}
	return out
}

// EachMapping walks an item's mappings without copying them. fn returns
// false to stop. Callers must not modify the aliases they are handed.
func (r *Registry) EachMapping(itemID string, fn func(models.ResponseMapping) bool) {
	for _, m := range r.mappings[itemID] {
		if !fn(m) {
			return
		}
	}
}

func copyScale(s models.Scale) models.Scale {
	s.InterpretationRanges = append([]models.InterpretationRange(nil), s.InterpretationRanges...)
	return s
}
