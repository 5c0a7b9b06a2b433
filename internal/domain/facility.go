package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of facility kinds in the supply chain.
type Category string

const (
	CategorySales         Category = "sales"
	CategoryProduction    Category = "production"
	CategoryManufacturing Category = "manufacturing"
)

// ParseCategory accepts a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategorySales, CategoryProduction, CategoryManufacturing:
		return c, nil
	default:
		return "", fmt.Errorf("parse category %q: %w", s, ErrMalformedInput)
	}
}

// Represents a named physical location in the bottled-water supply chain.
// Coordinates stay nil until resolved from the address; a facility without
// coordinates cannot take part in distance calculations.
type Facility struct {
	ID          string
	Name        string
	Address     string
	Category    Category
	Coordinates *Coordinates
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WithCoordinates returns a copy of f carrying c.
func (f Facility) WithCoordinates(c Coordinates) Facility {
	f.Coordinates = &c
	return f
}

// Distributor is the sales-side facility answering for a ZIP code.
type Distributor struct {
	Name        string
	Address     string
	Phone       string
	Coordinates *Coordinates
}

// WaterSite is one location returned by the water-source lookup.
type WaterSite struct {
	Name        string
	Address     string
	Distance    string
	Coordinates Coordinates
}

// WaterSources pairs the municipal source feeding a production center with the
// treatment center between them.
type WaterSources struct {
	MunicipalSource WaterSite
	TreatmentCenter WaterSite
}

// Validate checks the fields the emissions chain depends on.
func (w WaterSources) Validate() error {
	for _, s := range []struct {
		label string
		site  WaterSite
	}{
		{"municipal source", w.MunicipalSource},
		{"treatment center", w.TreatmentCenter},
	} {
		if strings.TrimSpace(s.site.Name) == "" {
			return fmt.Errorf("water sources: %s name is empty: %w", s.label, ErrMalformedInput)
		}
		if err := s.site.Coordinates.Validate(); err != nil {
			return fmt.Errorf("water sources: %s: %w", s.label, err)
		}
	}
	return nil
}
