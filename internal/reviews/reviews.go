package reviews

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrInvalidReview is returned when review or platform data violates an invariant.
var ErrInvalidReview = errors.New("reviews: invalid data")

// PageSize is the number of reviews revealed per "load more" step.
const PageSize = 9

// Platform is the booking or listing site a review was collected from.
type Platform string

const (
	Airbnb  Platform = "Airbnb"
	Booking Platform = "Booking.com"
	VRBO    Platform = "VRBO"
	Google  Platform = "Google"
	Direct  Platform = "SilverPineapple Direct"
)

// Platforms lists the known platforms in display order.
var Platforms = []Platform{Airbnb, Booking, VRBO, Google, Direct}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// DimensionRatings are optional per-aspect scores. Zero means "not rated".
type DimensionRatings struct {
	Cleanliness   int `yaml:"cleanliness"`
	Communication int `yaml:"communication"`
	Location      int `yaml:"location"`
	Value         int `yaml:"value"`
}

func (d DimensionRatings) values() []int {
	return []int{d.Cleanliness, d.Communication, d.Location, d.Value}
}

// Review is a single guest review.
type Review struct {
	ID           string
	GuestName    string
	PropertySlug string
	PropertyName string
	Rating       int
	Dimensions   *DimensionRatings
	Text         string
	Date         time.Time
	Platform     Platform
	Verified     bool
	StayDuration string
	Highlight    string
	Avatar       string
}

// PlatformStat is a maintained per-platform summary. It is not derived from the review list.
type PlatformStat struct {
	Platform Platform `yaml:"platform"`
	Rating   float64  `yaml:"rating"`
	Count    int      `yaml:"reviews"`
	Icon     string   `yaml:"icon"`
}

// Filter narrows a review list. Zero-valued fields are not applied.
type Filter struct {
	PropertySlug string
	MinRating    int
	Platform     Platform
}

// Match reports whether r satisfies every set field of f.
func (f Filter) Match(r Review) bool {
	if f.PropertySlug != "" && r.PropertySlug != f.PropertySlug {
		return false
	}
	if f.MinRating > 0 && r.Rating < f.MinRating {
		return false
	}
	if f.Platform != "" && r.Platform != f.Platform {
		return false
	}
	return true
}

// Empty reports whether no criteria are set.
func (f Filter) Empty() bool { return f == Filter{} }

// Store is an immutable list of reviews plus the platform summary table.
type Store struct {
	reviews []Review
	stats   []PlatformStat
}

// Option customises store validation.
type Option func(*options)

type options struct {
	unitExists func(slug string) bool
}

// WithUnitCheck rejects reviews whose property slug is not accepted by exists.
func WithUnitCheck(exists func(slug string) bool) Option {
	return func(o *options) { o.unitExists = exists }
}

// New validates and copies the provided data.
func New(list []Review, stats []PlatformStat, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{
		reviews: make([]Review, 0, len(list)),
		stats:   make([]PlatformStat, 0, len(stats)),
	}
	seen := make(map[string]struct{}, len(list))
	for _, r := range list {
		r.ID = strings.TrimSpace(r.ID)
		r.PropertySlug = strings.TrimSpace(r.PropertySlug)
		if r.ID == "" {
			return nil, fmt.Errorf("%w: review without id", ErrInvalidReview)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidReview, r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Rating < 1 || r.Rating > 5 {
			return nil, fmt.Errorf("%w: review %q rating %d outside 1-5", ErrInvalidReview, r.ID, r.Rating)
		}
		if r.Dimensions != nil {
			for _, v := range r.Dimensions.values() {
				if v != 0 && (v < 1 || v > 5) {
					return nil, fmt.Errorf("%w: review %q dimension rating %d outside 1-5", ErrInvalidReview, r.ID, v)
				}
			}
		}
		if r.Date.IsZero() {
			return nil, fmt.Errorf("%w: review %q has no date", ErrInvalidReview, r.ID)
		}
		if !r.Platform.Valid() {
			return nil, fmt.Errorf("%w: review %q has unknown platform %q", ErrInvalidReview, r.ID, r.Platform)
		}
		if r.PropertySlug != "" && o.unitExists != nil && !o.unitExists(r.PropertySlug) {
			return nil, fmt.Errorf("%w: review %q references unknown property %q", ErrInvalidReview, r.ID, r.PropertySlug)
		}
		s.reviews = append(s.reviews, cloneReview(r))
	}
	for _, st := range stats {
		if !st.Platform.Valid() {
			return nil, fmt.Errorf("%w: stat for unknown platform %q", ErrInvalidReview, st.Platform)
		}
		if st.Count < 0 {
			return nil, fmt.Errorf("%w: negative review count for %q", ErrInvalidReview, st.Platform)
		}
		s.stats = append(s.stats, st)
	}
	return s, nil
}

// All returns reviews in source order.
func (s *Store) All() []Review {
	out := make([]Review, len(s.reviews))
	for i, r := range s.reviews {
		out[i] = cloneReview(r)
	}
	return out
}

// Len returns the number of reviews in the live list.
func (s *Store) Len() int { return len(s.reviews) }

// SortedByDate returns reviews newest first. Reviews sharing a date keep source order.
func (s *Store) SortedByDate() []Review {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Filter returns the reviews matching f, in source order.
func (s *Store) Filter(f Filter) []Review {
	return Apply(s.All(), f)
}

// Query returns the reviews matching f, newest first, as listed on the reviews page.
func (s *Store) Query(f Filter) []Review {
	return Apply(s.SortedByDate(), f)
}

// Apply filters list by f, preserving order.
func Apply(list []Review, f Filter) []Review {
	if f.Empty() {
		return list
	}
	out := make([]Review, 0, len(list))
	for _, r := range list {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// AverageRating is the mean overall rating of the live list, rounded to one decimal.
func (s *Store) AverageRating() float64 {
	return Average(s.reviews)
}

// Average returns the mean rating of list rounded to one decimal place, or 0 for an empty list.
func Average(list []Review) float64 {
	if len(list) == 0 {
		return 0
	}
	sum := 0
	for _, r := range list {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(list))*10) / 10
}

// TotalReviewCount sums the platform summary counts. It intentionally ignores the live list.
func (s *Store) TotalReviewCount() int {
	total := 0
	for _, st := range s.stats {
		total += st.Count
	}
	return total
}

// Stats returns the platform summary table.
func (s *Store) Stats() []PlatformStat {
	return append([]PlatformStat(nil), s.stats...)
}

// Window returns the first visible reviews of list and whether more remain.
// A non-positive visible count means one page.
func Window(list []Review, visible int) ([]Review, bool) {
	if visible <= 0 {
		visible = PageSize
	}
	if visible >= len(list) {
		return list, false
	}
	return list[:visible], true
}

func cloneReview(r Review) Review {
	if r.Dimensions != nil {
		d := *r.Dimensions
		r.Dimensions = &d
	}
	return r
}
