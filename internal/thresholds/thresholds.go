package thresholds

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pricepulse/glitchradar/models"
)

// DefaultCategory is the fallback key for unknown or absent categories.
const DefaultCategory = "default"

// Registry maps normalized category names to detection thresholds. It is
// built once at startup and never mutated afterwards, so concurrent lookups
// need no synchronization.
type Registry struct {
	table map[string]models.CategoryThresholds
}

func defaultTable() map[string]models.CategoryThresholds {
	return map[string]models.CategoryThresholds{
		"electronics": {MADThreshold: 3.5, DropThreshold: 70, IQRMultiplier: 2.2, MinConfidenceBoost: 5},
		"computers":   {MADThreshold: 3.5, DropThreshold: 75, IQRMultiplier: 2.2, MinConfidenceBoost: 5},
		// Fashion runs deep legitimate sales, so the drop bar sits high.
		"fashion": {MADThreshold: 4.5, DropThreshold: 85, IQRMultiplier: 2.5, MinConfidenceBoost: 0},
		"apparel": {MADThreshold: 4.5, DropThreshold: 85, IQRMultiplier: 2.5, MinConfidenceBoost: 0},
		// Grocery prices almost never legitimately fall far.
		"grocery":       {MADThreshold: 3.0, DropThreshold: 50, IQRMultiplier: 2.0, MinConfidenceBoost: 15},
		"home":          {MADThreshold: 4.0, DropThreshold: 75, IQRMultiplier: 2.2, MinConfidenceBoost: 0},
		"toys":          {MADThreshold: 4.0, DropThreshold: 80, IQRMultiplier: 2.3, MinConfidenceBoost: 0},
		DefaultCategory: {MADThreshold: 3.5, DropThreshold: 70, IQRMultiplier: 2.2, MinConfidenceBoost: 0},
	}
}

// NewRegistry returns a registry with the built-in category table.
func NewRegistry() *Registry {
	return &Registry{table: defaultTable()}
}

// NewRegistryFromFile returns a registry with the built-in table overlaid by
// per-category records from a YAML file keyed by category name.
func NewRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading thresholds file: %w", err)
	}
	var overrides map[string]models.CategoryThresholds
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing thresholds file: %w", err)
	}
	table := defaultTable()
	for category, t := range overrides {
		table[Normalize(category)] = t
	}
	return &Registry{table: table}, nil
}

// Normalize lower-cases and trims a category name for lookup.
func Normalize(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Lookup resolves thresholds for a category and reports which key was
// applied. It never fails: unknown, empty, or absent categories resolve to
// the default record.
func (r *Registry) Lookup(category string) (models.CategoryThresholds, string) {
	key := Normalize(category)
	if t, ok := r.table[key]; ok {
		return t, key
	}
	return r.table[DefaultCategory], DefaultCategory
}
