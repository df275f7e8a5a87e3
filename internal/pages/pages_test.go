package pages

import (
	"context"
	"errors"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabomsambo/silce/internal/booking"
	"github.com/gabomsambo/silce/internal/catalog"
	"github.com/gabomsambo/silce/internal/cms"
	"github.com/gabomsambo/silce/internal/forms"
	"github.com/gabomsambo/silce/internal/i18n"
	"github.com/gabomsambo/silce/internal/reviews"
	"github.com/gabomsambo/silce/internal/seo"
)

var testSite = seo.Site{
	BaseURL:       "https://silverpineapple.net",
	Name:          "Silver Pineapple",
	Locales:       []string{"en", "es"},
	DefaultLocale: "en",
}

var testBridge = booking.NewBridge(booking.Config{
	Host:           "booking.hospitable.com",
	AccountID:      "acct",
	SearchWidgetID: "search-id",
	SearchScript:   "https://cdn.example.com/widget.js",
})

type fakeContent map[string]cms.Page

func (f fakeContent) Get(_ context.Context, section, slug, lang string) (cms.Page, error) {
	if p, ok := f[section+"/"+lang+"/"+slug]; ok {
		return p, nil
	}
	return cms.Page{}, cms.ErrNotFound
}

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.New(
		[]catalog.Category{
			{Key: catalog.StudioCompact, Name: "Compact", Blurb: "Small and smart."},
			{Key: catalog.StudioPlus, Name: "Plus", Badge: "Extra Space"},
			{Key: catalog.TwoBedOneBath, Name: "Two bed"},
		},
		[]catalog.Unit{
			{Slug: "studio-b", Title: "Studio B", Category: catalog.StudioCompact, PriceFrom: 79, MaxGuests: 2, Bathrooms: 1, BedType: "Queen", ProviderID: "222", Images: []string{"/b/1.jpg", "/b/2.jpg"}},
			{Slug: "studio-a", Title: "Studio A", Category: catalog.StudioCompact, PriceFrom: 49, MaxGuests: 1, Bedrooms: 1, Bathrooms: 2, ProviderID: "111"},
			{Slug: "plus-c", Title: "Plus C", Category: catalog.StudioPlus, PriceFrom: 1299, MaxGuests: 3, Bathrooms: 1, SqFt: 420, ProviderID: "333"},
		},
	)
	require.NoError(t, err)
	return s
}

func testReviews(t *testing.T, n int) *reviews.Store {
	t.Helper()
	list := make([]reviews.Review, 0, n)
	start := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rating := 5
		if i%3 == 0 {
			rating = 4
		}
		list = append(list, reviews.Review{
			ID:           "r" + string(rune('a'+i)),
			GuestName:    "guest",
			PropertySlug: "studio-a",
			Rating:       rating,
			Text:         "Great.",
			Date:         start.AddDate(0, 0, -i),
			Platform:     reviews.Airbnb,
		})
	}
	s, err := reviews.New(list, []reviews.PlatformStat{
		{Platform: reviews.Airbnb, Rating: 4.9, Count: 300},
		{Platform: reviews.Google, Rating: 5, Count: 136},
	})
	require.NoError(t, err)
	return s
}

func newComposer(t *testing.T, content ContentSource) *Composer {
	t.Helper()
	c, err := New(Deps{
		Site:    testSite,
		Catalog: testCatalog(t),
		Reviews: testReviews(t, 12),
		Content: content,
		Bridge:  testBridge,
		Now:     func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return c
}

func translator(t *testing.T, locale string) *i18n.Translator {
	t.Helper()
	r, err := i18n.NewResolver(i18n.FSLoader{FS: os.DirFS("../../locales")}, "en", []string{"en", "es"})
	require.NoError(t, err)
	tr, err := r.Resolve(context.Background(), locale)
	require.NoError(t, err)
	return tr
}

func request(t *testing.T, locale, path string, query url.Values) Request {
	return Request{Locale: locale, T: translator(t, locale), Path: path, Query: query}
}

func TestStaticPathsCoverEveryLocaleAndSlugOnce(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	c, err := New(Deps{Site: testSite, Catalog: cat, Reviews: testReviews(t, 1), Bridge: testBridge})
	require.NoError(t, err)

	paths := c.StaticPaths()
	assert.Len(t, paths, len(testSite.Locales)*cat.Len())

	seen := map[UnitPath]int{}
	for _, p := range paths {
		seen[p]++
	}
	for _, l := range testSite.Locales {
		for _, s := range cat.Slugs() {
			assert.Equal(t, 1, seen[UnitPath{Locale: l, Slug: s}], "%s/%s", l, s)
		}
	}
	assert.Equal(t, "/en/rooms/unit-2528", paths[0].Href())
}

func TestUnsupportedLocaleIsNotFoundEverywhere(t *testing.T) {
	c := newComposer(t, nil)
	req := Request{Locale: "fr", T: translator(t, "en"), Path: "/fr"}
	ctx := context.Background()

	_, err := c.Home(ctx, req, NewsletterState{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.About(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Rooms(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Room(ctx, req, "studio-a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Reviews(ctx, req, ReviewsQuery{}, ReviewState{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Search(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomUnknownSlugIsNotFound(t *testing.T) {
	c := newComposer(t, nil)
	for _, slug := range []string{"", "STUDIO-A", "studio-z"} {
		_, err := c.Room(context.Background(), request(t, "en", "/en/rooms/"+slug, nil), slug)
		assert.True(t, errors.Is(err, ErrNotFound), slug)
	}
}

func TestRoomDetail(t *testing.T) {
	c := newComposer(t, nil)
	q := url.Values{"checkin": {"2024-09-01"}, "adults": {"2"}, "utm_source": {"x"}}
	p, err := c.Room(context.Background(), request(t, "en", "/en/rooms/studio-b", q), "studio-b")
	require.NoError(t, err)

	assert.Equal(t, "Studio B | Silver Pineapple", p.Meta.Title)
	assert.Equal(t, "https://silverpineapple.net/en/rooms/studio-b", p.Meta.Canonical)
	assert.Equal(t, "https://silverpineapple.net/b/1.jpg", p.Meta.OG.Image)
	assert.Equal(t, "en_US", p.Meta.OG.Locale)
	assert.Len(t, p.JSONLD, 2)

	s, ok := p.Find("booking")
	require.True(t, ok)
	frame := s.Data.(BookingFrame).Frame
	assert.Equal(t, "https://booking.hospitable.com/widget/acct/222?checkin=2024-09-01&adults=2", frame.Src)
	assert.Equal(t, "Book Studio B", frame.Title)
	assert.Equal(t, booking.FrameSandbox, frame.Sandbox)

	s, ok = p.Find("room")
	require.True(t, ok)
	detail := s.Data.(RoomDetail)
	assert.Equal(t, []string{"Up to 2 guests", "0 bedrooms", "1 bathroom"}, detail.Specs)
	assert.Equal(t, "From $79/night", detail.Pricing)
	assert.Contains(t, detail.Long, "Highlights:")

	s, _ = p.Find("gallery")
	gallery := s.Data.(Gallery)
	require.Len(t, gallery.Images, 2)
	assert.Equal(t, "Studio B - Image 2", gallery.Images[1].Alt)

	require.Len(t, p.Breadcrumbs, 3)
	assert.Equal(t, "Studio B", p.Breadcrumbs[2].Label)
}

func TestRoomDetailSpanishAndDefaultImage(t *testing.T) {
	c := newComposer(t, nil)
	p, err := c.Room(context.Background(), request(t, "es", "/es/rooms/studio-a", nil), "studio-a")
	require.NoError(t, err)

	s, _ := p.Find("room")
	detail := s.Data.(RoomDetail)
	assert.Equal(t, []string{"Hasta 1 huéspedes", "1 habitación", "2 baños"}, detail.Specs)
	assert.Contains(t, detail.Long, "Destacados:")

	s, _ = p.Find("gallery")
	gallery := s.Data.(Gallery)
	require.Len(t, gallery.Images, 1)
	assert.Equal(t, "/og-rooms.jpg", gallery.Images[0].Src)

	s, _ = p.Find("booking")
	assert.Equal(t, "https://booking.hospitable.com/widget/acct/111", s.Data.(BookingFrame).Frame.Src)
	assert.Equal(t, "es_ES", p.Meta.OG.Locale)
}

func TestRoomsGroupsByCategoryAndPrice(t *testing.T) {
	c := newComposer(t, nil)
	p, err := c.Rooms(context.Background(), request(t, "en", "/en/rooms", nil))
	require.NoError(t, err)

	var groups []RoomGroup
	for _, s := range p.Sections {
		if s.Kind == "room_group" {
			groups = append(groups, s.Data.(RoomGroup))
		}
	}
	require.Len(t, groups, 2, "empty categories are omitted")
	assert.Equal(t, catalog.StudioCompact, groups[0].Key)
	require.Len(t, groups[0].Cards, 2)
	assert.Equal(t, "studio-a", groups[0].Cards[0].Slug)
	assert.Equal(t, "/en/rooms/studio-a", groups[0].Cards[0].Href)
	assert.Equal(t, "From $1,299/night", groups[1].Cards[0].Price)
	assert.Contains(t, p.Meta.Description, "$49")

	last := p.Sections[len(p.Sections)-1]
	assert.Equal(t, "features", last.Kind)
	assert.Len(t, last.Data.(FeatureGrid).Items, 8)
}

func TestHomeSearchElementFollowsLocale(t *testing.T) {
	c := newComposer(t, nil)
	for _, l := range []string{"en", "es"} {
		p, err := c.Home(context.Background(), request(t, l, "/"+l, nil), NewsletterState{})
		require.NoError(t, err)
		s, ok := p.Find("hero")
		require.True(t, ok)
		hero := s.Data.(Hero)
		require.NotNil(t, hero.Search)
		assert.Equal(t, "/"+l+"/search", hero.Search.ResultsURL)
		assert.Equal(t, "search-id", hero.Search.Identifier)
	}
}

func TestHomeMetadata(t *testing.T) {
	c := newComposer(t, nil)
	p, err := c.Home(context.Background(), request(t, "es", "/es", nil), NewsletterState{})
	require.NoError(t, err)

	assert.Equal(t, "https://silverpineapple.net/es", p.Meta.Canonical)
	assert.Equal(t, []seo.Alternate{
		{Hreflang: "en", Href: "https://silverpineapple.net/en"},
		{Hreflang: "es", Href: "https://silverpineapple.net/es"},
		{Hreflang: "x-default", Href: "https://silverpineapple.net/en"},
	}, p.Meta.Alternates)
	assert.Equal(t, "https://silverpineapple.net/og-home.jpg", p.Meta.OG.Image)
	assert.Equal(t, 2025, p.Footer.Year)
	require.Len(t, p.JSONLD, 1)
	assert.Contains(t, p.JSONLD[0], `"reviewCount":436`)
}

func TestNewsletterFormStates(t *testing.T) {
	c := newComposer(t, nil)
	req := request(t, "en", "/en", nil)

	p, err := c.Home(context.Background(), req, NewsletterState{
		Values: forms.NewsletterSignup{Email: "bad"},
		Errors: forms.FieldErrors{"email": "invalidEmail"},
	})
	require.NoError(t, err)
	s, _ := p.Find("newsletter")
	form := s.Data.(NewsletterForm)
	assert.Equal(t, "bad", form.Email)
	assert.Equal(t, "Please enter a valid email address.", form.Errors["email"])
	assert.Equal(t, "/en/newsletter", form.Action)

	p, err = c.Home(context.Background(), req, NewsletterState{Values: forms.NewsletterSignup{Email: "a@b.co"}, Failed: true})
	require.NoError(t, err)
	s, _ = p.Find("newsletter")
	form = s.Data.(NewsletterForm)
	assert.Equal(t, "a@b.co", form.Email, "values survive a forwarding failure")
	assert.NotEmpty(t, form.Alert)
}

func TestAboutFounderContent(t *testing.T) {
	content := fakeContent{"about/en/founder": {Title: "Meet us", HTML: "<p>hi</p>"}}
	c := newComposer(t, content)

	p, err := c.About(context.Background(), request(t, "en", "/en/about", nil))
	require.NoError(t, err)
	s, ok := p.Find("founder")
	require.True(t, ok)
	founder := s.Data.(Founder)
	require.NotNil(t, founder.Content)
	assert.Equal(t, "Meet us", founder.Content.Title)

	p, err = c.About(context.Background(), request(t, "es", "/es/about", nil))
	require.NoError(t, err)
	s, _ = p.Find("founder")
	assert.Nil(t, s.Data.(Founder).Content, "missing content leaves the heading only")
	assert.NotEmpty(t, s.Data.(Founder).Heading)
}

func TestReviewsPage(t *testing.T) {
	c := newComposer(t, nil)
	p, err := c.Reviews(context.Background(), request(t, "en", "/en/reviews", nil), ParseReviewsQuery(nil), ReviewState{})
	require.NoError(t, err)

	kinds := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []string{"hero", "review_form", "review_stats", "review_list"}, kinds)

	s, _ := p.Find("review_stats")
	stats := s.Data.(ReviewStats)
	assert.Equal(t, 436, stats.Total, "total comes from the platform table")
	assert.Equal(t, "4.7", stats.Average)
	assert.Len(t, stats.Platforms, 2)

	s, _ = p.Find("review_list")
	list := s.Data.(ReviewList)
	assert.Len(t, list.Cards, reviews.PageSize)
	assert.Equal(t, "Showing 9 of 12 reviews", list.Showing)
	assert.Equal(t, "/en/reviews?show=18", list.NextHref)
	assert.Equal(t, "Dec 2024", list.Cards[0].Date)
}

func TestReviewListFilterAndWindow(t *testing.T) {
	c := newComposer(t, nil)
	req := request(t, "es", "/es/reviews", nil)

	all := c.ReviewList(req, ParseReviewsQuery(url.Values{"show": {"10"}}))
	assert.Len(t, all.Cards, 12)
	assert.Empty(t, all.NextHref)

	five := c.ReviewList(req, ParseReviewsQuery(url.Values{"rating": {"5"}}))
	assert.Len(t, five.Cards, 8)
	for _, card := range five.Cards {
		assert.Equal(t, 5, card.Rating)
	}

	none := c.ReviewList(req, ParseReviewsQuery(url.Values{"platform": {"Google"}}))
	assert.Empty(t, none.Cards)
	assert.NotEmpty(t, none.Empty)
}

func TestParseReviewsQuery(t *testing.T) {
	q := ParseReviewsQuery(url.Values{"rating": {"3"}, "platform": {"MySpace"}, "show": {"-4"}, "property": {" studio-a "}})
	assert.Equal(t, reviews.Filter{PropertySlug: "studio-a"}, q.Filter)
	assert.Equal(t, reviews.PageSize, q.Visible)

	q = ParseReviewsQuery(url.Values{"rating": {"4"}, "platform": {"Booking.com"}, "show": {"12"}})
	assert.Equal(t, 4, q.Filter.MinRating)
	assert.Equal(t, reviews.Booking, q.Filter.Platform)
	assert.Equal(t, 18, q.Visible)
	assert.Equal(t, "platform=Booking.com&rating=4&show=18", q.Values().Encode())
}

func TestReviewFormKeepsValuesOnFailure(t *testing.T) {
	c := newComposer(t, nil)
	values := forms.ReviewSubmission{GuestName: "Ana", PropertySlug: "studio-a", Rating: 5}
	p, err := c.Reviews(context.Background(), request(t, "en", "/en/reviews", nil), ParseReviewsQuery(nil), ReviewState{
		Values: values,
		Errors: forms.FieldErrors{"text": "errors.text"},
	})
	require.NoError(t, err)
	s, _ := p.Find("review_form")
	form := s.Data.(ReviewForm)
	assert.Equal(t, values, form.Values)
	assert.Equal(t, "Reviews must be between 50 and 500 characters.", form.Errors["text"])
	assert.True(t, form.Properties[2].Selected)
}

func TestSearchPage(t *testing.T) {
	c := newComposer(t, nil)
	p, err := c.Search(context.Background(), request(t, "es", "/es/search", nil))
	require.NoError(t, err)
	assert.True(t, p.MaskWidget)

	s, ok := p.Find("search")
	require.True(t, ok)
	w := s.Data.(SearchWidget)
	assert.Equal(t, "/es/search", w.Element.ResultsURL)
	assert.Equal(t, int64(500), w.MaskEvery)
	assert.Equal(t, int64(60000), w.MaskFor)
}

func TestSitemap(t *testing.T) {
	c := newComposer(t, nil)
	entries := c.Sitemap(time.Time{})
	assert.Len(t, entries, 2*4+2*3)
	assert.Equal(t, "https://silverpineapple.net/en", entries[0].Loc)
	assert.Equal(t, 1.0, entries[0].Priority)

	last := entries[len(entries)-1]
	assert.Equal(t, "https://silverpineapple.net/es/rooms/plus-c", last.Loc)
	assert.Equal(t, seo.Weekly, last.ChangeFreq)
	assert.Len(t, last.Alternates, 3)
}

func TestNotFoundPage(t *testing.T) {
	c := newComposer(t, nil)
	p := c.NotFound(Request{Locale: "fr", T: translator(t, "en"), Path: "/fr/rooms"})
	assert.Equal(t, 404, p.Status)
	assert.Equal(t, "en", p.Lang)
	assert.True(t, p.Meta.NoIndex)
	s, ok := p.Find("message")
	require.True(t, ok)
	assert.Equal(t, "Page not found", s.Data.(Message).Heading)
	assert.Equal(t, "/en", s.Data.(Message).Back.Href)
}
