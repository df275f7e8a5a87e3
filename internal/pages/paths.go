package pages

import (
	"time"

	"github.com/gabomsambo/silce/internal/seo"
)

// UnitPath identifies one pre-enumerable room detail page.
type UnitPath struct {
	Locale string
	Slug   string
}

// Href is the site path of the page.
func (p UnitPath) Href() string { return "/" + p.Locale + "/rooms/" + p.Slug }

// StaticPaths enumerates every (locale, slug) pair exactly once, locales in
// configured order and slugs in catalog order.
func (c *Composer) StaticPaths() []UnitPath {
	slugs := c.catalog.Slugs()
	out := make([]UnitPath, 0, len(c.site.Locales)*len(slugs))
	for _, l := range c.site.Locales {
		for _, s := range slugs {
			out = append(out, UnitPath{Locale: l, Slug: s})
		}
	}
	return out
}

type staticRoute struct {
	suffix   string
	freq     seo.ChangeFreq
	priority float64
}

// The search page is a widget results view and is left out of the sitemap.
var sitemapRoutes = []staticRoute{
	{suffix: "", freq: seo.Monthly, priority: 1.0},
	{suffix: "/rooms", freq: seo.Weekly, priority: 0.8},
	{suffix: "/about", freq: seo.Monthly, priority: 0.5},
	{suffix: "/reviews", freq: seo.Weekly, priority: 0.6},
}

// Sitemap lists one entry per locale and static route, then one per static path.
func (c *Composer) Sitemap(lastMod time.Time) []seo.Entry {
	entries := make([]seo.Entry, 0, len(c.site.Locales)*len(sitemapRoutes)+len(c.site.Locales)*c.catalog.Len())
	for _, l := range c.site.Locales {
		for _, r := range sitemapRoutes {
			entries = append(entries, seo.Entry{
				Loc:        c.site.Canonical(l, r.suffix),
				LastMod:    lastMod,
				ChangeFreq: r.freq,
				Priority:   r.priority,
				Alternates: c.site.Alternates(r.suffix),
			})
		}
	}
	for _, p := range c.StaticPaths() {
		suffix := "/rooms/" + p.Slug
		entries = append(entries, seo.Entry{
			Loc:        c.site.Canonical(p.Locale, suffix),
			LastMod:    lastMod,
			ChangeFreq: seo.Weekly,
			Priority:   0.9,
			Alternates: c.site.Alternates(suffix),
		})
	}
	return entries
}
