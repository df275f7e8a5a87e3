package pages

import (
	"context"
	"fmt"

	"github.com/gabomsambo/silce/internal/booking"
	"github.com/gabomsambo/silce/internal/catalog"
	"github.com/gabomsambo/silce/internal/format"
	"github.com/gabomsambo/silce/internal/i18n"
	"github.com/gabomsambo/silce/internal/nav"
	"github.com/gabomsambo/silce/internal/seo"
)

// RoomCard is one unit on the rooms index.
type RoomCard struct {
	Slug   string
	Title  string
	Href   string
	Image  string
	Short  string
	Price  string
	Sleeps string
	Button string
}

// RoomGroup is one category heading with its cards, cheapest first.
type RoomGroup struct {
	Key       catalog.CategoryKey
	Name      string
	Badge     string
	Blurb     string
	Amenities []string
	Cards     []RoomCard
}

// Image is a gallery image with its alt text.
type Image struct {
	Src string
	Alt string
}

// Gallery is the image strip of a room detail page. Images is never empty.
type Gallery struct {
	Title  string
	Images []Image
}

// RoomDetail is the descriptive block of a room detail page.
type RoomDetail struct {
	Title     string
	Category  string
	Badge     string
	Specs     []string
	Short     string
	Long      string
	Pricing   string
	Amenities []string
}

// BookingFrame embeds the hosted booking widget for one unit.
type BookingFrame struct {
	Heading string
	Frame   booking.Frame
}

var amenityKeys = []string{"wifi", "keyless", "checkin", "parking", "laundry", "coffee", "tv", "ac"}

// Rooms composes the rooms index: categories in definition order, each with its
// units sorted by price, followed by the shared amenity grid.
func (c *Composer) Rooms(ctx context.Context, req Request) (Page, error) {
	t := req.T
	args := i18n.Args{"price": format.FmtPrice(c.lowestPrice())}
	p, err := c.base(req, RouteRooms, "/rooms", meta(t, "rooms", args, roomsImage))
	if err != nil {
		return Page{}, err
	}
	p.Breadcrumbs = nav.Breadcrumbs(req.Locale, p.Path, "")
	rooms := t.Namespace("rooms")
	wording := format.WordingFor(req.Locale)

	p.add("hero", Hero{
		Heading:    rooms.T("hero.heading", nil),
		Subheading: rooms.T("hero.subheading", nil),
		Image:      "/rooms-hero.jpg",
	})
	p.add("intro", Intro{Paragraphs: []string{rooms.T("introduction", nil)}})

	for _, g := range c.catalog.Groups() {
		group := RoomGroup{
			Key:       g.Category.Key,
			Name:      g.Category.Name,
			Badge:     g.Category.Badge,
			Blurb:     g.Category.Blurb,
			Amenities: g.Category.DefaultAmenities,
		}
		for _, u := range g.Units {
			group.Cards = append(group.Cards, RoomCard{
				Slug:   u.Slug,
				Title:  u.Title,
				Href:   nav.Href(req.Locale, "/rooms/"+u.Slug),
				Image:  format.CoverImage(u),
				Short:  wording.Short(u),
				Price:  rooms.T("card.from", i18n.Args{"price": format.FmtPrice(u.PriceFrom)}),
				Sleeps: rooms.T("card.sleeps", i18n.Args{"maxGuests": u.MaxGuests}),
				Button: rooms.T("card.buttonPrimary", nil),
			})
		}
		p.add("room_group", group)
	}

	amenities := FeatureGrid{
		Heading:    rooms.T("amenities.heading", nil),
		Subheading: rooms.T("amenities.subheading", nil),
	}
	for _, k := range amenityKeys {
		amenities.Items = append(amenities.Items, Feature{
			Key:         k,
			Title:       rooms.T("amenities.list."+k+".title", nil),
			Description: rooms.T("amenities.list."+k+".description", nil),
		})
	}
	p.add("features", amenities)
	p.addJSONLD(seo.BreadcrumbList(c.crumbs(t, req.Locale, nil)))
	return p, nil
}

// Room composes a unit detail page. An unknown slug is a terminal ErrNotFound.
// The booking frame carries the inbound pass-through query.
func (c *Composer) Room(ctx context.Context, req Request, slug string) (Page, error) {
	u, ok := c.catalog.FindUnit(slug)
	if !ok {
		return Page{}, fmt.Errorf("%w: unit %q", ErrNotFound, slug)
	}
	cat, _ := c.catalog.Category(u.Category)
	t := req.T
	tpl := t.Namespace("propertyDetail.templates")
	wording := format.WordingFor(req.Locale)
	price := format.FmtPrice(u.PriceFrom)
	args := i18n.Args{
		"title":     u.Title,
		"maxGuests": u.MaxGuests,
		"bedrooms":  u.Bedrooms,
		"bathrooms": u.Bathrooms,
		"price":     price,
	}

	suffix := "/rooms/" + u.Slug
	m := seo.Meta{
		Title:       title(t, u.Title),
		Description: wording.Meta(u),
		Keywords:    t.T("metadata.global", "keywords", nil),
		OG: seo.OpenGraph{
			Title:       title(t, u.Title),
			Description: tpl.T("ogDescription", args),
			Image:       format.CoverImage(u),
		},
	}
	p, err := c.base(req, RouteRoom, suffix, m)
	if err != nil {
		return Page{}, err
	}
	p.Breadcrumbs = nav.Breadcrumbs(req.Locale, p.Path, u.Title)

	gallery := Gallery{Title: u.Title}
	for i, src := range format.Gallery(u) {
		gallery.Images = append(gallery.Images, Image{
			Src: src,
			Alt: tpl.T("imageAlt", i18n.Args{"title": u.Title, "n": i + 1}),
		})
	}
	p.add("gallery", gallery)

	p.add("room", RoomDetail{
		Title:    u.Title,
		Category: cat.Name,
		Badge:    cat.Badge,
		Specs: []string{
			tpl.T("specsGuests", args),
			tpl.Plural("specsBedrooms", u.Bedrooms, args),
			tpl.Plural("specsBathrooms", u.Bathrooms, args),
		},
		Short:     wording.Short(u),
		Long:      wording.Long(u, cat),
		Pricing:   tpl.T("pricing", args),
		Amenities: cat.DefaultAmenities,
	})
	p.add("booking", BookingFrame{
		Heading: t.T("common", "bookNow", nil),
		Frame:   c.bridge.Frame(u, req.Query, tpl.T("bookTitle", args)),
	})

	p.addJSONLD(seo.BreadcrumbList(c.crumbs(t, req.Locale, &u)))
	p.addJSONLD(seo.Accommodation(seo.Stay{
		Name:        u.Title,
		Description: wording.Long(u, cat),
		URL:         p.Meta.Canonical,
		Image:       c.site.Abs(format.CoverImage(u)),
		MaxGuests:   u.MaxGuests,
		Bedrooms:    u.Bedrooms,
		Bathrooms:   u.Bathrooms,
		BedType:     u.BedType,
		SqFt:        u.SqFt,
		PriceFrom:   u.PriceFrom,
	}))
	return p, nil
}

func (c *Composer) crumbs(t *i18n.Translator, locale string, u *catalog.Unit) []seo.BreadcrumbItem {
	tpl := t.Namespace("propertyDetail.templates")
	items := []seo.BreadcrumbItem{
		{Name: tpl.T("breadcrumbHome", nil), Item: c.site.Canonical(locale, "")},
		{Name: tpl.T("breadcrumbRooms", nil), Item: c.site.Canonical(locale, "/rooms")},
	}
	if u != nil {
		items = append(items, seo.BreadcrumbItem{Name: u.Title, Item: c.site.Canonical(locale, "/rooms/"+u.Slug)})
	}
	return items
}

func (c *Composer) lowestPrice() int {
	lowest := 0
	for _, u := range c.catalog.Units() {
		if lowest == 0 || u.PriceFrom < lowest {
			lowest = u.PriceFrom
		}
	}
	return lowest
}
