package pages

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/cms"
	"github.com/gabomsambo/silce/internal/nav"
)

// Founder is the about page story, rendered from CMS markdown.
type Founder struct {
	Heading string
	Content *cms.Page
}

// CTA closes a page with up to two links.
type CTA struct {
	Heading   string
	Body      string
	Primary   Link
	Secondary Link
}

// About composes the about page. A missing or broken founder story is logged
// and the section renders with its heading only.
func (c *Composer) About(ctx context.Context, req Request) (Page, error) {
	t := req.T
	p, err := c.base(req, RouteAbout, "/about", meta(t, "about", nil, homeImage))
	if err != nil {
		return Page{}, err
	}
	p.Breadcrumbs = nav.Breadcrumbs(req.Locale, p.Path, "")
	about := t.Namespace("about")

	p.add("hero", Hero{
		Heading:    about.T("hero.heading", nil),
		Subheading: about.T("hero.subheading", nil),
		Image:      "/about-hero.jpg",
	})
	p.add("intro", Intro{
		Heading: about.T("introduction.heading", nil),
		Paragraphs: []string{
			about.T("introduction.paragraph1", nil),
			about.T("introduction.paragraph2", nil),
			about.T("introduction.paragraph3", nil),
		},
	})

	founder := Founder{Heading: about.T("founder.heading", nil)}
	if c.content != nil {
		page, err := c.content.Get(ctx, "about", "founder", req.Locale)
		switch {
		case err == nil:
			founder.Content = &page
		case errors.Is(err, cms.ErrNotFound):
			logger(ctx).Warn("about founder content missing", zap.String("locale", req.Locale))
		default:
			logger(ctx).Error("about founder content failed", zap.String("locale", req.Locale), zap.Error(err))
		}
	}
	p.add("founder", founder)

	philosophy := FeatureGrid{
		Heading:    about.T("philosophy.heading", nil),
		Subheading: about.T("philosophy.subheading", nil),
	}
	for _, k := range []string{"comfort", "seamless", "local", "trusted"} {
		philosophy.Items = append(philosophy.Items, Feature{
			Key:         k,
			Title:       about.T("philosophy."+k+".title", nil),
			Description: about.T("philosophy."+k+".description", nil),
		})
	}
	p.add("features", philosophy)

	location := FeatureGrid{
		Heading: about.T("location.heading", nil),
		Body: []string{
			about.T("location.paragraph1", nil),
			about.T("location.paragraph2", nil),
		},
	}
	for _, k := range []string{"arts", "dining", "parks", "beach"} {
		location.Items = append(location.Items, Feature{
			Key:         k,
			Title:       about.T("location."+k+".title", nil),
			Description: about.T("location."+k+".description", nil),
		})
	}
	p.add("features", location)

	p.add("cta", CTA{
		Heading:   about.T("cta.heading", nil),
		Body:      about.T("cta.body", nil),
		Primary:   Link{Label: about.T("cta.buttonBook", nil), Href: nav.Href(req.Locale, "/search")},
		Secondary: Link{Label: about.T("cta.buttonRooms", nil), Href: nav.Href(req.Locale, "/rooms")},
	})
	return p, nil
}
