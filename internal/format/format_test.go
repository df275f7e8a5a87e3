package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabomsambo/silce/internal/catalog"
)

func TestFmtPrice(t *testing.T) {
	cases := map[int]string{
		0:     "$0",
		49:    "$49",
		199:   "$199",
		1299:  "$1,299",
		25000: "$25,000",
		-5:    "-$5",
	}
	for in, want := range cases {
		assert.Equal(t, want, FmtPrice(in))
	}
	assert.NotContains(t, FmtPrice(199), ".")
}

func TestFmtDate(t *testing.T) {
	d := time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dec 2024", FmtDate(d, "en"))
	assert.Equal(t, "dic 2024", FmtDate(d, "es"))
	assert.Equal(t, "Dec 2024", FmtDate(d, ""))
}

func TestShortDescriptionOmitsAbsentFields(t *testing.T) {
	full := catalog.Unit{BedType: "King", SqFt: 430, Floor: "Upper", Extras: []string{"High ceilings", "Balcony"}}
	assert.Equal(t, "King · 430 sq ft · Upper level · High ceilings · Balcony", ShortDescription(full))

	cases := []struct {
		name string
		unit catalog.Unit
		want string
	}{
		{"no area", catalog.Unit{BedType: "Queen", Floor: "Ground"}, "Queen · Ground level"},
		{"no bed", catalog.Unit{SqFt: 500}, "500 sq ft"},
		{"blank extras", catalog.Unit{BedType: "Queen", Extras: []string{"", "  "}}, "Queen"},
		{"nothing", catalog.Unit{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShortDescription(tc.unit)
			assert.Equal(t, tc.want, got)
			assert.NotContains(t, got, "·  ·")
			assert.NotContains(t, got, " ·  · ")
			assert.False(t, strings.HasPrefix(got, " ·"))
			assert.False(t, strings.HasSuffix(got, "· "))
		})
	}
}

func TestLongDescriptionPluralization(t *testing.T) {
	cat := catalog.Category{Blurb: "Roomy studios."}

	one := catalog.Unit{Bedrooms: 1, Bathrooms: 1, MaxGuests: 1, BedType: "Queen"}
	got := LongDescription(one, cat)
	assert.Equal(t, "Roomy studios. Highlights: 1 bedroom · 1 bathroom · 1 guest · Queen. "+EnglishWording.Neighborhood, got)

	many := catalog.Unit{Bedrooms: 2, Bathrooms: 0, MaxGuests: 6, SqFt: 520, Extras: []string{"Dining table", "Patio"}}
	got = LongDescription(many, cat)
	assert.Contains(t, got, "Highlights: ~520 sq ft · 2 bedrooms · 0 bathrooms · 6 guests · Dining table, Patio.")
	assert.True(t, strings.HasSuffix(got, "beaches in ~10–15 minutes."))
}

func TestSpanishWording(t *testing.T) {
	u := catalog.Unit{Title: "Sea Grape 102", Bedrooms: 2, Bathrooms: 1, MaxGuests: 6, SqFt: 520, Floor: "Ground"}
	w := WordingFor("es")
	assert.Equal(t, "520 pies² · nivel Ground", w.Short(u))
	assert.Contains(t, w.Long(u, catalog.Category{}), "2 dormitorios · 1 baño · 6 huéspedes")
	assert.Equal(t, EnglishWording, WordingFor("fr"))
}

func TestMetaDescription(t *testing.T) {
	u := catalog.Unit{Title: "Pineapple 101", BedType: "Queen", SqFt: 720, Floor: "Upper"}
	assert.Equal(t,
		"Pineapple 101: Queen · 720 sq ft · Upper level · Walk to library, murals, cafés; beach in 10–15 min. Book at Silver Pineapple.",
		MetaDescription(u))

	bare := catalog.Unit{Title: "Bare"}
	assert.Equal(t, "Bare: "+EnglishWording.MetaTail, MetaDescription(bare))
}

func TestImagesFallBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultImage, CoverImage(catalog.Unit{}))
	assert.Equal(t, []string{DefaultImage}, Gallery(catalog.Unit{}))

	store, err := catalog.Default()
	require.NoError(t, err)
	u, ok := store.FindUnit("unit-2528")
	require.True(t, ok)
	assert.Equal(t, "/photos_2528/1.jpg", CoverImage(u))
	assert.Len(t, Gallery(u), 10)
}
