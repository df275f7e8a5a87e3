package pages

import (
	"context"

	"github.com/gabomsambo/silce/internal/booking"
	"github.com/gabomsambo/silce/internal/forms"
	"github.com/gabomsambo/silce/internal/format"
	"github.com/gabomsambo/silce/internal/i18n"
	"github.com/gabomsambo/silce/internal/nav"
	"github.com/gabomsambo/silce/internal/seo"
)

const (
	homeImage  = "/og-home.jpg"
	roomsImage = format.DefaultImage
)

// Hero opens most pages. Search is set when the hero embeds the vendor search element.
type Hero struct {
	Heading    string
	Subheading string
	Image      string
	Search     *booking.SearchElement
}

// Intro is a heading followed by paragraphs.
type Intro struct {
	Heading    string
	Paragraphs []string
}

// Feature is an icon tile in a feature grid.
type Feature struct {
	Key         string
	Title       string
	Description string
}

// FeatureGrid is a heading with a list of features.
type FeatureGrid struct {
	Heading    string
	Subheading string
	Body       []string
	Items      []Feature
}

// NewsletterState is the posted state of the signup form.
type NewsletterState struct {
	Values forms.NewsletterSignup
	Errors forms.FieldErrors
	Failed bool
	Sent   bool
}

// NewsletterForm is the signup form view.
type NewsletterForm struct {
	Action  string
	Email   string
	Errors  map[string]string
	Alert   string
	Success bool
	Heading string
	Body    string
}

var discoverKeys = []string{"arts", "beach", "dining", "nature", "space", "culture"}

// Home composes the landing page. The hero search element is rebuilt for the
// active locale because its results URL embeds it.
func (c *Composer) Home(ctx context.Context, req Request, form NewsletterState) (Page, error) {
	t := req.T
	p, err := c.base(req, RouteHome, "", meta(t, "home", nil, homeImage))
	if err != nil {
		return Page{}, err
	}
	p.Meta.Title = t.T("metadata.global", "defaultTitle", nil)

	search := c.bridge.SearchElement(req.Locale)
	home := t.Namespace("home")
	p.add("hero", Hero{
		Heading:    home.T("hero.heading", nil),
		Subheading: home.T("hero.subheading", nil),
		Image:      "/hero.jpg",
		Search:     &search,
	})
	p.add("intro", Intro{
		Heading:    home.T("introduction.heading", nil),
		Paragraphs: []string{home.T("introduction.body", nil)},
	})
	grid := FeatureGrid{
		Heading:    home.T("discover.heading", nil),
		Subheading: home.T("discover.subheading", nil),
	}
	for _, k := range discoverKeys {
		grid.Items = append(grid.Items, Feature{Key: k, Description: home.T("discover."+k, nil)})
	}
	p.add("features", grid)
	p.add("newsletter", c.newsletterForm(t, req.Locale, form))
	p.addJSONLD(c.lodging())
	return p, nil
}

func (c *Composer) newsletterForm(t *i18n.Translator, locale string, st NewsletterState) NewsletterForm {
	s := t.Namespace("home.newsletter")
	f := NewsletterForm{
		Action:  nav.Href(locale, "/newsletter"),
		Email:   st.Values.Email,
		Errors:  translateErrors(s, st.Errors),
		Success: st.Sent,
		Heading: s.T("heading", nil),
		Body:    s.T("body", nil),
	}
	if st.Failed {
		f.Alert = s.T("failure", nil)
	}
	if st.Sent {
		f.Heading = s.T("successHeading", nil)
		f.Body = s.T("successBody", nil)
		f.Email = ""
	}
	return f
}

func translateErrors(s i18n.Scope, errs forms.FieldErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, key := range errs {
		out[field] = s.T(key, nil)
	}
	return out
}

func (c *Composer) lodging() map[string]any {
	b := c.business
	if b.URL == "" {
		b.URL = c.site.Abs("/")
	}
	if b.Image == "" {
		b.Image = c.site.Abs(homeImage)
	}
	return seo.LodgingBusiness(b, c.reviews.AverageRating(), c.reviews.TotalReviewCount())
}
