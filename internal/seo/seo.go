package seo

import (
	"strings"
)

// OpenGraph is the social preview tuple rendered as og:* tags.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	Locale      string
	SiteName    string
}

// Twitter is rendered as twitter:* tags.
type Twitter struct {
	Card        string
	Title       string
	Description string
	Image       string
}

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string
	Href     string
}

// Meta is everything a page emits in <head>.
type Meta struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	Alternates  []Alternate
	OG          OpenGraph
	Twitter     Twitter
	NoIndex     bool
}

// Site knows the public origin and the locale set, and turns locale-less
// route suffixes ("", "/rooms", "/rooms/{slug}") into absolute URLs.
type Site struct {
	BaseURL       string
	Name          string
	Locales       []string
	DefaultLocale string
}

// Path returns the locale-prefixed path for suffix.
func (s Site) Path(locale, suffix string) string {
	if suffix != "" && !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return "/" + locale + suffix
}

// Abs joins p onto the base URL. Absolute URLs are returned unchanged.
func (s Site) Abs(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if p == "" || p == "/" {
		return base
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

// Canonical is the absolute URL of suffix in locale.
func (s Site) Canonical(locale, suffix string) string {
	return s.Abs(s.Path(locale, suffix))
}

// Alternates lists one link per supported locale plus x-default pointing at
// the default locale.
func (s Site) Alternates(suffix string) []Alternate {
	out := make([]Alternate, 0, len(s.Locales)+1)
	for _, l := range s.Locales {
		out = append(out, Alternate{Hreflang: l, Href: s.Canonical(l, suffix)})
	}
	return append(out, Alternate{Hreflang: "x-default", Href: s.Canonical(s.DefaultLocale, suffix)})
}

// OGLocale maps a site locale onto the og:locale territory form.
func OGLocale(locale string) string {
	switch locale {
	case "en":
		return "en_US"
	case "es":
		return "es_ES"
	}
	return locale
}

// Build fills the derived parts of m (canonical, alternates, og url/locale,
// absolute images, twitter fallbacks) for suffix in locale.
func (s Site) Build(m Meta, locale, suffix string) Meta {
	m.Canonical = s.Canonical(locale, suffix)
	m.Alternates = s.Alternates(suffix)
	if m.OG.Title == "" {
		m.OG.Title = m.Title
	}
	if m.OG.Description == "" {
		m.OG.Description = m.Description
	}
	if m.OG.Type == "" {
		m.OG.Type = "website"
	}
	if m.OG.Image != "" {
		m.OG.Image = s.Abs(m.OG.Image)
	}
	m.OG.URL = m.Canonical
	m.OG.Locale = OGLocale(locale)
	m.OG.SiteName = s.Name

	if m.Twitter.Card == "" {
		m.Twitter.Card = "summary_large_image"
	}
	if m.Twitter.Title == "" {
		m.Twitter.Title = m.OG.Title
	}
	if m.Twitter.Description == "" {
		m.Twitter.Description = m.OG.Description
	}
	if m.Twitter.Image == "" {
		m.Twitter.Image = m.OG.Image
	} else {
		m.Twitter.Image = s.Abs(m.Twitter.Image)
	}
	return m
}
