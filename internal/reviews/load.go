package reviews

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data/reviews.yaml
var defaultData []byte

type document struct {
	Reviews []record       `yaml:"reviews"`
	Stats   []PlatformStat `yaml:"platform_stats"`
}

type record struct {
	ID           string            `yaml:"id"`
	GuestName    string            `yaml:"guest_name"`
	PropertySlug string            `yaml:"property_slug"`
	PropertyName string            `yaml:"property_name"`
	Rating       int               `yaml:"rating"`
	Dimensions   *DimensionRatings `yaml:"dimensions"`
	Text         string            `yaml:"text"`
	Date         string            `yaml:"date"`
	Platform     Platform          `yaml:"platform"`
	Verified     bool              `yaml:"verified"`
	StayDuration string            `yaml:"stay_duration"`
	Highlight    string            `yaml:"highlight"`
	Avatar       string            `yaml:"avatar"`
}

// Parse decodes a YAML review document and validates it.
func Parse(data []byte, opts ...Option) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reviews: parse: %w", err)
	}
	list := make([]Review, 0, len(doc.Reviews))
	for _, rec := range doc.Reviews {
		date, err := ParseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: review %q: %v", ErrInvalidReview, rec.ID, err)
		}
		list = append(list, Review{
			ID:           rec.ID,
			GuestName:    strings.TrimSpace(rec.GuestName),
			PropertySlug: rec.PropertySlug,
			PropertyName: strings.TrimSpace(rec.PropertyName),
			Rating:       rec.Rating,
			Dimensions:   rec.Dimensions,
			Text:         strings.TrimSpace(rec.Text),
			Date:         date,
			Platform:     rec.Platform,
			Verified:     rec.Verified,
			StayDuration: rec.StayDuration,
			Highlight:    rec.Highlight,
			Avatar:       rec.Avatar,
		})
	}
	return New(list, doc.Stats, opts...)
}

// Default returns the reviews shipped with the binary.
func Default(opts ...Option) (*Store, error) {
	return Parse(defaultData, opts...)
}

// ParseDate accepts ISO dates with or without a time component.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}
