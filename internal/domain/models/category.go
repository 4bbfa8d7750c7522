package models

import "fmt"

// Category partitions the stock store. Each category carries its own unit of
// measure and is persisted under its own storage key.
type Category string

const (
	CategoryRaw       Category = "raw"
	CategoryFurniture Category = "furniture"
)

// CategorySpec describes the presentation and measurement rules of a category.
type CategorySpec struct {
	Code  Category
	Label string
	Unit  string
	// WholeUnits marks categories counted in pieces rather than weighed.
	// It drives labels and reporting only; quantities are not rounded.
	WholeUnits bool
}

var categoryRegistry = []CategorySpec{
	{Code: CategoryRaw, Label: "Raw Materials", Unit: "KG", WholeUnits: false},
	{Code: CategoryFurniture, Label: "Furniture Materials", Unit: "Pieces", WholeUnits: true},
}

// Categories returns the closed category set in registration order.
func Categories() []CategorySpec {
	specs := make([]CategorySpec, len(categoryRegistry))
	copy(specs, categoryRegistry)
	return specs
}

// ParseCategory resolves a category code coming from the outside world.
func ParseCategory(code string) (Category, error) {
	for _, spec := range categoryRegistry {
		if string(spec.Code) == code {
			return spec.Code, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", code)
}

// Spec returns the registry entry for the category. Unknown categories fall
// back to a bare spec so persisted records with stale codes still render.
func (c Category) Spec() CategorySpec {
	for _, spec := range categoryRegistry {
		if spec.Code == c {
			return spec
		}
	}
	return CategorySpec{Code: c, Label: string(c), Unit: "Pieces", WholeUnits: true}
}

// Unit returns the category's unit label.
func (c Category) Unit() string {
	return c.Spec().Unit
}

// Label returns the category's display name.
func (c Category) Label() string {
	return c.Spec().Label
}
