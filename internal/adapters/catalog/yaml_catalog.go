package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/ports"

	"gopkg.in/yaml.v3"
)

//go:embed footprints.yaml
var defaultDocument []byte

type document struct {
	Default *domain.BaseProductFootprint                      `yaml:"default"`
	Brands  map[string]map[string]domain.BaseProductFootprint `yaml:"brands"`
}

// YAMLCatalog serves base product footprints keyed by brand and drink.
// Keys are matched case-insensitively.
type YAMLCatalog struct {
	fallback domain.BaseProductFootprint
	byKey    map[string]domain.BaseProductFootprint
	entries  []ports.FootprintEntry
}

var _ ports.FootprintCatalog = (*YAMLCatalog)(nil)

// Default returns the catalog compiled into the binary.
func Default() *YAMLCatalog {
	c, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded footprint catalog: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*YAMLCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading footprint catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("footprint catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document.
func Parse(data []byte) (*YAMLCatalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing footprint YAML: %w", err)
	}
	if doc.Default == nil {
		return nil, errors.New("missing default footprint")
	}
	if err := validate(*doc.Default); err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}

	c := &YAMLCatalog{
		fallback: *doc.Default,
		byKey:    make(map[string]domain.BaseProductFootprint),
	}
	for brand, drinks := range doc.Brands {
		for drink, fp := range drinks {
			if err := validate(fp); err != nil {
				return nil, fmt.Errorf("%s/%s: %w", brand, drink, err)
			}
			k := key(brand, drink)
			if _, dup := c.byKey[k]; dup {
				return nil, fmt.Errorf("duplicate entry %s/%s", brand, drink)
			}
			c.byKey[k] = fp
			c.entries = append(c.entries, ports.FootprintEntry{
				Brand:     strings.ToLower(strings.TrimSpace(brand)),
				Drink:     strings.ToLower(strings.TrimSpace(drink)),
				Footprint: fp,
			})
		}
	}

	sort.Slice(c.entries, func(i, j int) bool {
		if c.entries[i].Brand != c.entries[j].Brand {
			return c.entries[i].Brand < c.entries[j].Brand
		}
		return c.entries[i].Drink < c.entries[j].Drink
	})

	return c, nil
}

func (c *YAMLCatalog) Footprint(brand, drink string) (domain.BaseProductFootprint, bool) {
	if fp, ok := c.byKey[key(brand, drink)]; ok {
		return fp, true
	}
	return c.fallback, false
}

func (c *YAMLCatalog) Entries() []ports.FootprintEntry {
	out := make([]ports.FootprintEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *YAMLCatalog) Fallback() domain.BaseProductFootprint { return c.fallback }

func key(brand, drink string) string {
	return strings.ToLower(strings.TrimSpace(brand)) + "/" + strings.ToLower(strings.TrimSpace(drink))
}

func validate(fp domain.BaseProductFootprint) error {
	if fp.CO2Kg < 0 || fp.MicroplasticsUg < 0 || fp.WaterUsageL < 0 {
		return fmt.Errorf("negative footprint value: %w", domain.ErrMalformedInput)
	}
	return nil
}
