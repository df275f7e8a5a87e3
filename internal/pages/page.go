package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/booking"
	"github.com/gabomsambo/silce/internal/catalog"
	"github.com/gabomsambo/silce/internal/cms"
	"github.com/gabomsambo/silce/internal/i18n"
	"github.com/gabomsambo/silce/internal/nav"
	"github.com/gabomsambo/silce/internal/observability"
	"github.com/gabomsambo/silce/internal/reviews"
	"github.com/gabomsambo/silce/internal/seo"
)

// ErrNotFound is the terminal not-found condition: unknown locale or unit slug.
var ErrNotFound = errors.New("pages: not found")

// Route names a composed page.
type Route string

const (
	RouteHome     Route = "home"
	RouteAbout    Route = "about"
	RouteRooms    Route = "rooms"
	RouteRoom     Route = "room"
	RouteReviews  Route = "reviews"
	RouteSearch   Route = "search"
	RouteNotFound Route = "not_found"
	RouteError    Route = "error"
)

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// Request carries what every composition needs from the inbound request.
type Request struct {
	Locale string
	T      *i18n.Translator
	Path   string
	Query  url.Values
}

// Page is the view model handed to the base layout.
type Page struct {
	Route     Route
	Lang      string
	Status    int
	Meta      seo.Meta
	JSONLD    []string
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Locales     []nav.LocaleLink
	Footer      Footer

	Sections []Section

	// MaskWidget asks the renderer to run the property-count mask over the output.
	MaskWidget bool
	T          *i18n.Translator
}

// Section is one presentational block. Kind selects the template; T is carried
// so section templates can translate static labels.
type Section struct {
	Kind string
	Data any
	T    *i18n.Translator
}

// Find returns the first section of kind.
func (p Page) Find(kind string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Footer is the shared page footer.
type Footer struct {
	Year   int
	Links  []nav.RenderedItem
	Email  string
	Phone  string
	Social []Link
}

// Link is a labelled href.
type Link struct {
	Label string
	Href  string
}

// ContentSource supplies CMS-managed sections.
type ContentSource interface {
	Get(ctx context.Context, section, slug, lang string) (cms.Page, error)
}

// Deps are the collaborators of a Composer. Catalog, Reviews and Bridge are required.
type Deps struct {
	Site      seo.Site
	Business  seo.Business
	Catalog   *catalog.Store
	Reviews   *reviews.Store
	Content   ContentSource
	Bridge    *booking.Bridge
	Poller    booking.Poller
	Analytics Analytics
	Contact   Footer
	Now       func() time.Time
}

// Composer assembles per-route pages from the stores and a resolved translator.
// It holds no per-request state.
type Composer struct {
	site      seo.Site
	business  seo.Business
	catalog   *catalog.Store
	reviews   *reviews.Store
	content   ContentSource
	bridge    *booking.Bridge
	poller    booking.Poller
	analytics Analytics
	contact   Footer
	now       func() time.Time
}

// New builds a Composer.
func New(d Deps) (*Composer, error) {
	if d.Catalog == nil || d.Reviews == nil || d.Bridge == nil {
		return nil, errors.New("pages: catalog, reviews and bridge are required")
	}
	if len(d.Site.Locales) == 0 || d.Site.DefaultLocale == "" {
		return nil, errors.New("pages: site locales are required")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Poller.Interval <= 0 {
		d.Poller = booking.DefaultPoller
	}
	return &Composer{
		site:      d.Site,
		business:  d.Business,
		catalog:   d.Catalog,
		reviews:   d.Reviews,
		content:   d.Content,
		bridge:    d.Bridge,
		poller:    d.Poller,
		analytics: d.Analytics,
		contact:   d.Contact,
		now:       d.Now,
	}, nil
}

// Site returns the site description used for URLs and alternates.
func (c *Composer) Site() seo.Site { return c.site }

func (c *Composer) supported(locale string) bool {
	for _, l := range c.site.Locales {
		if l == locale {
			return true
		}
	}
	return false
}

// base starts a page for route with the shared layout filled in. suffix is the
// locale-less path used for canonical and alternate links.
func (c *Composer) base(req Request, route Route, suffix string, meta seo.Meta) (Page, error) {
	if !c.supported(req.Locale) || req.T == nil {
		return Page{}, fmt.Errorf("%w: locale %q", ErrNotFound, req.Locale)
	}
	path := req.Path
	if path == "" {
		path = c.site.Path(req.Locale, suffix)
	}
	rawQuery := ""
	if len(req.Query) > 0 {
		rawQuery = req.Query.Encode()
	}
	footer := c.contact
	footer.Year = c.now().Year()
	footer.Links = nav.Build(req.Locale, path)

	return Page{
		Route:     route,
		Lang:      req.Locale,
		Status:    http.StatusOK,
		Meta:      c.site.Build(meta, req.Locale, suffix),
		Analytics: c.analytics,
		Path:      path,
		Nav:       nav.Build(req.Locale, path),
		Locales:   nav.Switcher(c.site.Locales, req.Locale, path, rawQuery),
		Footer:    footer,
		T:         req.T,
	}, nil
}

func (p *Page) add(kind string, data any) {
	p.Sections = append(p.Sections, Section{Kind: kind, Data: data, T: p.T})
}

func (p *Page) addJSONLD(v map[string]any) {
	if s := seo.JSON(v); s != "" {
		p.JSONLD = append(p.JSONLD, s)
	}
}

// title applies the global title template.
func title(t *i18n.Translator, v string) string {
	return t.T("metadata.global", "titleTemplate", i18n.Args{"title": v})
}

// meta reads the standard metadata.{ns} keys.
func meta(t *i18n.Translator, ns string, args i18n.Args, image string) seo.Meta {
	s := t.Namespace("metadata." + ns)
	return seo.Meta{
		Title:       title(t, s.T("title", args)),
		Description: s.T("description", args),
		Keywords:    t.T("metadata.global", "keywords", nil),
		OG: seo.OpenGraph{
			Title:       s.T("ogTitle", args),
			Description: s.T("ogDescription", args),
			Image:       image,
		},
		Twitter: seo.Twitter{
			Title:       s.T("twitterTitle", args),
			Description: s.T("twitterDescription", args),
		},
	}
}

// NotFound composes the terminal not-found page. Callers pass a translator for
// the default locale when the requested locale itself was the problem.
func (c *Composer) NotFound(req Request) Page {
	return c.fallbackPage(req, RouteNotFound, http.StatusNotFound, "common.notFound")
}

// Error composes the generic failure page.
func (c *Composer) Error(req Request) Page {
	return c.fallbackPage(req, RouteError, http.StatusInternalServerError, "common.error")
}

func (c *Composer) fallbackPage(req Request, route Route, status int, ns string) Page {
	if !c.supported(req.Locale) {
		req.Locale = c.site.DefaultLocale
	}
	s := req.T.Namespace(ns)
	p, err := c.base(req, route, "", seo.Meta{Title: title(req.T, s.T("title", nil)), Description: s.T("body", nil), NoIndex: true})
	if err != nil {
		// only reachable with a nil translator
		p = Page{Route: route, Lang: req.Locale, T: req.T}
	}
	p.Status = status
	p.add("message", Message{
		Heading: s.T("title", nil),
		Body:    s.T("body", nil),
		Back:    Link{Label: s.T("back", nil), Href: nav.Href(req.Locale, "/")},
	})
	return p
}

// Message is a heading, body and back link.
type Message struct {
	Heading string
	Body    string
	Back    Link
}

func logger(ctx context.Context) *zap.Logger {
	return observability.FromContext(ctx)
}
