package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCatalog is returned when unit or category data violates a catalog invariant.
var ErrInvalidCatalog = errors.New("catalog: invalid data")

// CategoryKey identifies a unit category. The set of keys is closed.
type CategoryKey string

const (
	StudioCompact CategoryKey = "studio-compact"
	StudioComfort CategoryKey = "studio-comfort"
	StudioPlus    CategoryKey = "studio-plus"
	OneBedOneBath CategoryKey = "one-bed-1-bath"
	TwoBedOneBath CategoryKey = "two-bed-1-bath"
)

var categoryKeys = []CategoryKey{StudioCompact, StudioComfort, StudioPlus, OneBedOneBath, TwoBedOneBath}

// Valid reports whether k belongs to the closed set of category keys.
func (k CategoryKey) Valid() bool {
	for _, known := range categoryKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Category groups units that share amenity defaults and a price tier narrative.
type Category struct {
	Key              CategoryKey `yaml:"key"`
	Name             string      `yaml:"name"`
	Badge            string      `yaml:"badge"`
	Blurb            string      `yaml:"blurb"`
	DefaultAmenities []string    `yaml:"amenities"`
	HeroImage        string      `yaml:"hero_image"`
}

// Unit is one bookable rental accommodation. Zero values of SqFt and Floor mean "not published".
type Unit struct {
	Slug       string      `yaml:"slug"`
	Title      string      `yaml:"title"`
	Category   CategoryKey `yaml:"category"`
	PriceFrom  int         `yaml:"price_from"`
	MaxGuests  int         `yaml:"max_guests"`
	Bedrooms   int         `yaml:"bedrooms"`
	Bathrooms  int         `yaml:"bathrooms"`
	BedType    string      `yaml:"bed_type"`
	SqFt       int         `yaml:"sq_ft"`
	Floor      string      `yaml:"floor"`
	Extras     []string    `yaml:"extras"`
	ProviderID string      `yaml:"provider_id"`
	Images     []string    `yaml:"images"`
}

// Group pairs a category with its units, cheapest first.
type Group struct {
	Category Category
	Units    []Unit
}

// Store is an immutable, in-memory table of units and categories.
type Store struct {
	categories []Category
	byKey      map[CategoryKey]int
	units      []Unit
	bySlug     map[string]int
}

// New validates the provided tables and builds a Store. The inputs are copied.
func New(categories []Category, units []Unit) (*Store, error) {
	s := &Store{
		categories: make([]Category, 0, len(categories)),
		byKey:      make(map[CategoryKey]int, len(categories)),
		units:      make([]Unit, 0, len(units)),
		bySlug:     make(map[string]int, len(units)),
	}
	for _, c := range categories {
		c = normalizeCategory(c)
		if !c.Key.Valid() {
			return nil, fmt.Errorf("%w: unknown category key %q", ErrInvalidCatalog, c.Key)
		}
		if _, dup := s.byKey[c.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, c.Key)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("%w: category %q has no name", ErrInvalidCatalog, c.Key)
		}
		s.byKey[c.Key] = len(s.categories)
		s.categories = append(s.categories, c)
	}
	for _, u := range units {
		u = normalizeUnit(u)
		if err := s.validateUnit(u); err != nil {
			return nil, err
		}
		s.bySlug[u.Slug] = len(s.units)
		s.units = append(s.units, u)
	}
	return s, nil
}

func (s *Store) validateUnit(u Unit) error {
	switch {
	case u.Slug == "":
		return fmt.Errorf("%w: unit without slug", ErrInvalidCatalog)
	case u.Title == "":
		return fmt.Errorf("%w: unit %q has no title", ErrInvalidCatalog, u.Slug)
	case u.PriceFrom <= 0:
		return fmt.Errorf("%w: unit %q price must be positive", ErrInvalidCatalog, u.Slug)
	case u.MaxGuests <= 0:
		return fmt.Errorf("%w: unit %q must sleep at least one guest", ErrInvalidCatalog, u.Slug)
	case u.Bedrooms < 0 || u.Bathrooms < 0 || u.SqFt < 0:
		return fmt.Errorf("%w: unit %q has negative counts", ErrInvalidCatalog, u.Slug)
	case u.ProviderID == "":
		return fmt.Errorf("%w: unit %q has no provider id", ErrInvalidCatalog, u.Slug)
	}
	if _, dup := s.bySlug[u.Slug]; dup {
		return fmt.Errorf("%w: duplicate slug %q", ErrInvalidCatalog, u.Slug)
	}
	if _, ok := s.byKey[u.Category]; !ok {
		return fmt.Errorf("%w: unit %q references undefined category %q", ErrInvalidCatalog, u.Slug, u.Category)
	}
	return nil
}

// Units returns every unit in definition order.
func (s *Store) Units() []Unit {
	out := make([]Unit, len(s.units))
	for i, u := range s.units {
		out[i] = cloneUnit(u)
	}
	return out
}

// Len returns the number of units.
func (s *Store) Len() int { return len(s.units) }

// Slugs returns unit slugs in definition order.
func (s *Store) Slugs() []string {
	out := make([]string, len(s.units))
	for i, u := range s.units {
		out[i] = u.Slug
	}
	return out
}

// FindUnit looks up a unit by its exact, case-sensitive slug.
func (s *Store) FindUnit(slug string) (Unit, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Unit{}, false
	}
	return cloneUnit(s.units[i]), true
}

// HasUnit reports whether slug names a unit.
func (s *Store) HasUnit(slug string) bool {
	_, ok := s.bySlug[slug]
	return ok
}

// UnitsByCategory returns the units of one category sorted by ascending price.
// Units with equal prices keep their definition order.
func (s *Store) UnitsByCategory(key CategoryKey) []Unit {
	var out []Unit
	for _, u := range s.units {
		if u.Category == key {
			out = append(out, cloneUnit(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PriceFrom < out[j].PriceFrom })
	return out
}

// Categories returns categories in definition order.
func (s *Store) Categories() []Category {
	out := make([]Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = cloneCategory(c)
	}
	return out
}

// Category returns the category metadata for key.
func (s *Store) Category(key CategoryKey) (Category, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Category{}, false
	}
	return cloneCategory(s.categories[i]), true
}

// Groups returns the non-empty categories with their units, as shown on the rooms index.
func (s *Store) Groups() []Group {
	groups := make([]Group, 0, len(s.categories))
	for _, c := range s.categories {
		units := s.UnitsByCategory(c.Key)
		if len(units) == 0 {
			continue
		}
		groups = append(groups, Group{Category: cloneCategory(c), Units: units})
	}
	return groups
}

func normalizeUnit(u Unit) Unit {
	u.Slug = strings.TrimSpace(u.Slug)
	u.Title = strings.TrimSpace(u.Title)
	u.BedType = strings.TrimSpace(u.BedType)
	u.Floor = strings.TrimSpace(u.Floor)
	u.ProviderID = strings.TrimSpace(u.ProviderID)
	u.Extras = compact(u.Extras)
	u.Images = compact(u.Images)
	return u
}

func normalizeCategory(c Category) Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Badge = strings.TrimSpace(c.Badge)
	c.Blurb = strings.TrimSpace(c.Blurb)
	c.DefaultAmenities = compact(c.DefaultAmenities)
	return c
}

// compact trims entries and drops blanks.
func compact(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneUnit(u Unit) Unit {
	u.Extras = append([]string(nil), u.Extras...)
	u.Images = append([]string(nil), u.Images...)
	return u
}

func cloneCategory(c Category) Category {
	c.DefaultAmenities = append([]string(nil), c.DefaultAmenities...)
	return c
}
