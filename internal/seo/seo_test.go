package seo

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var site = Site{
	BaseURL:       "https://silverpineapple.net/",
	Name:          "Silver Pineapple",
	Locales:       []string{"en", "es"},
	DefaultLocale: "en",
}

func TestAlternatesIncludeXDefault(t *testing.T) {
	alts := site.Alternates("/rooms")
	assert.Equal(t, []Alternate{
		{Hreflang: "en", Href: "https://silverpineapple.net/en/rooms"},
		{Hreflang: "es", Href: "https://silverpineapple.net/es/rooms"},
		{Hreflang: "x-default", Href: "https://silverpineapple.net/en/rooms"},
	}, alts)

	home := site.Alternates("")
	assert.Equal(t, "https://silverpineapple.net/en", home[2].Href)
}

func TestBuildDerivesSocialFields(t *testing.T) {
	m := site.Build(Meta{
		Title:       "Rooms",
		Description: "Studios",
		OG:          OpenGraph{Image: "/og-rooms.jpg"},
	}, "es", "rooms")

	assert.Equal(t, "https://silverpineapple.net/es/rooms", m.Canonical)
	assert.Equal(t, "Rooms", m.OG.Title)
	assert.Equal(t, "website", m.OG.Type)
	assert.Equal(t, "es_ES", m.OG.Locale)
	assert.Equal(t, "https://silverpineapple.net/og-rooms.jpg", m.OG.Image)
	assert.Equal(t, "summary_large_image", m.Twitter.Card)
	assert.Equal(t, "Studios", m.Twitter.Description)
	assert.Equal(t, m.OG.Image, m.Twitter.Image)
	assert.Len(t, m.Alternates, 3)
}

func TestAbsKeepsAbsoluteURLs(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.jpg", site.Abs("https://cdn.example.com/a.jpg"))
	assert.Equal(t, "https://silverpineapple.net", site.Abs("/"))
	assert.Equal(t, "https://silverpineapple.net/a.jpg", site.Abs("a.jpg"))
}

func TestLodgingBusinessRating(t *testing.T) {
	ld := LodgingBusiness(Business{Name: "Silver Pineapple", Locality: "Melbourne", Region: "FL"}, 4.86, 436)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(JSON(ld)), &decoded))
	assert.Equal(t, "LodgingBusiness", decoded["@type"])
	rating := decoded["aggregateRating"].(map[string]any)
	assert.Equal(t, 4.9, rating["ratingValue"])
	assert.Equal(t, float64(436), rating["reviewCount"])

	_, ok := LodgingBusiness(Business{Name: "x"}, 0, 0)["aggregateRating"]
	assert.False(t, ok)
}

func TestAccommodationOffer(t *testing.T) {
	ld := Accommodation(Stay{Name: "Studio", URL: "https://x/en/rooms/a", MaxGuests: 2, PriceFrom: 89})
	offer := ld["offers"].(map[string]any)
	assert.Equal(t, 89, offer["price"])
	assert.Equal(t, "USD", offer["priceCurrency"])
	_, hasFloor := ld["floorSize"]
	assert.False(t, hasFloor)
}

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSitemap(&buf, []Entry{
		{Loc: "https://x/en", ChangeFreq: Monthly, Priority: 1, LastMod: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Alternates: site.Alternates("")},
		{Loc: "https://x/en/rooms/a", ChangeFreq: Weekly, Priority: 0.9},
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("url").Length())
	assert.Equal(t, "1.0", doc.Find("url").First().Find("priority").Text())
	assert.Equal(t, "2025-01-02", doc.Find("url").First().Find("lastmod").Text())
	assert.Equal(t, "0.9", doc.Find("url").Last().Find("priority").Text())
	assert.Contains(t, buf.String(), `hreflang="x-default"`)
}

func TestRobots(t *testing.T) {
	got := Robots("https://silverpineapple.net/", []string{"/test-booking", "/api/"})
	assert.Equal(t, "User-agent: *\nAllow: /\nDisallow: /test-booking\nDisallow: /api/\n\nSitemap: https://silverpineapple.net/sitemap.xml\n", got)
}
