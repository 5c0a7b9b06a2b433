package ports

import "trace-emissions-service/internal/domain"

// Product entry of the base footprint catalog.
type FootprintEntry struct {
	Brand     string
	Drink     string
	Footprint domain.BaseProductFootprint
}

// Static lookup of brand-specific product footprints.
type FootprintCatalog interface {
	// Return the footprint for brand/drink, falling back to the catalog default.
	// The bool reports whether an exact entry was found.
	Footprint(brand, drink string) (domain.BaseProductFootprint, bool)
	Entries() []FootprintEntry
}
