package reviews

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixture(t *testing.T) *Store {
	t.Helper()
	s, err := New([]Review{
		{ID: "r1", Rating: 5, Date: day("2024-10-01"), Platform: Airbnb, PropertySlug: "unit-a"},
		{ID: "r2", Rating: 5, Date: day("2024-12-01"), Platform: Google},
		{ID: "r3", Rating: 5, Date: day("2024-10-01"), Platform: VRBO, PropertySlug: "unit-b"},
		{ID: "r4", Rating: 4, Date: day("2024-11-01"), Platform: Airbnb, PropertySlug: "unit-a"},
		{ID: "r5", Rating: 5, Date: day("2024-10-01"), Platform: Airbnb},
	}, []PlatformStat{
		{Platform: Airbnb, Rating: 4.9, Count: 10},
		{Platform: Google, Rating: 4.8, Count: 5},
	})
	require.NoError(t, err)
	return s
}

func ids(list []Review) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func TestSortedByDateIsStable(t *testing.T) {
	s := fixture(t)
	got := ids(s.SortedByDate())
	assert.Equal(t, []string{"r2", "r4", "r1", "r3", "r5"}, got)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4", "r5"}, ids(s.All()), "source order untouched")
}

func TestFilterIsConjunctive(t *testing.T) {
	s := fixture(t)

	assert.Equal(t, []string{"r1", "r4"}, ids(s.Filter(Filter{PropertySlug: "unit-a"})))
	assert.Equal(t, []string{"r1", "r2", "r3", "r5"}, ids(s.Filter(Filter{MinRating: 5})))
	assert.Equal(t, []string{"r1", "r4", "r5"}, ids(s.Filter(Filter{Platform: Airbnb})))
	assert.Equal(t, []string{"r1"}, ids(s.Filter(Filter{PropertySlug: "unit-a", MinRating: 5, Platform: Airbnb})))
	assert.Empty(t, s.Filter(Filter{PropertySlug: "unit-b", Platform: Airbnb}))
	assert.Len(t, s.Filter(Filter{}), 5)
}

func TestQuerySortsThenFilters(t *testing.T) {
	s := fixture(t)
	assert.Equal(t, []string{"r4", "r1", "r5"}, ids(s.Query(Filter{Platform: Airbnb})))
}

func TestAverageRating(t *testing.T) {
	list := make([]Review, 0, 5)
	for i, r := range []int{5, 5, 5, 4, 5} {
		list = append(list, Review{ID: string(rune('a' + i)), Rating: r})
	}
	assert.Equal(t, 4.8, Average(list))
	assert.Equal(t, 0.0, Average(nil))

	s := fixture(t)
	assert.Equal(t, 4.8, s.AverageRating())
}

// The summary total and the live list are separate sources of truth.
func TestTotalReviewCountUsesPlatformStats(t *testing.T) {
	s := fixture(t)
	assert.Equal(t, 15, s.TotalReviewCount())
	assert.Equal(t, 5, s.Len())

	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 436, def.TotalReviewCount())
	assert.Equal(t, 16, def.Len())
	assert.NotEqual(t, def.Len(), def.TotalReviewCount())
	assert.Equal(t, 4.9, def.AverageRating())
}

func TestWindow(t *testing.T) {
	list := make([]Review, 20)
	shown, more := Window(list, 0)
	assert.Len(t, shown, PageSize)
	assert.True(t, more)

	shown, more = Window(list, 18)
	assert.Len(t, shown, 18)
	assert.True(t, more)

	shown, more = Window(list, 27)
	assert.Len(t, shown, 20)
	assert.False(t, more)
}

func TestNewRejectsInvalidReviews(t *testing.T) {
	good := Review{ID: "x", Rating: 5, Date: day("2024-01-01"), Platform: Google}
	cases := map[string][]Review{
		"rating too high": {withRating(good, 6)},
		"rating too low":  {withRating(good, 0)},
		"duplicate id":    {good, good},
		"no date":         {withDate(good, time.Time{})},
		"bad platform":    {withPlatform(good, "Expedia")},
		"bad dimension":   {withDimensions(good, &DimensionRatings{Cleanliness: 7})},
	}
	for name, list := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(list, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidReview))
		})
	}
}

func TestUnitCheckRejectsUnknownProperty(t *testing.T) {
	r := Review{ID: "x", Rating: 5, Date: day("2024-01-01"), Platform: Google, PropertySlug: "ghost"}
	_, err := New([]Review{r}, nil, WithUnitCheck(func(slug string) bool { return slug == "real" }))
	require.ErrorIs(t, err, ErrInvalidReview)

	r.PropertySlug = ""
	_, err = New([]Review{r}, nil, WithUnitCheck(func(string) bool { return false }))
	require.NoError(t, err, "reviews without a property are accepted")
}

func TestParseRejectsBadDate(t *testing.T) {
	_, err := Parse([]byte(`
reviews:
  - {id: a, guest_name: A, rating: 5, text: ok, date: "15/12/2024", platform: Google}
`))
	require.ErrorIs(t, err, ErrInvalidReview)
}

func withRating(r Review, n int) Review                   { r.Rating = n; return r }
func withDate(r Review, d time.Time) Review               { r.Date = d; return r }
func withPlatform(r Review, p Platform) Review            { r.Platform = p; return r }
func withDimensions(r Review, d *DimensionRatings) Review { r.Dimensions = d; return r }
