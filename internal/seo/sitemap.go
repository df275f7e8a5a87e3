package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// ChangeFreq is a sitemap change-frequency hint.
type ChangeFreq string

const (
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
)

// Entry is one sitemap URL.
type Entry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq ChangeFreq
	Priority   float64
	Alternates []Alternate
}

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	NS      string     `xml:"xmlns,attr"`
	XHTML   string     `xml:"xmlns:xhtml,attr"`
	URLs    []xmlEntry `xml:"url"`
}

type xmlEntry struct {
	Loc        string    `xml:"loc"`
	LastMod    string    `xml:"lastmod,omitempty"`
	ChangeFreq string    `xml:"changefreq,omitempty"`
	Priority   string    `xml:"priority,omitempty"`
	Links      []xmlLink `xml:"xhtml:link"`
}

type xmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// WriteSitemap encodes entries as a sitemaps.org urlset with hreflang links.
func WriteSitemap(w io.Writer, entries []Entry) error {
	set := urlset{
		NS:    "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  make([]xmlEntry, 0, len(entries)),
	}
	for _, e := range entries {
		x := xmlEntry{Loc: e.Loc, ChangeFreq: string(e.ChangeFreq)}
		if !e.LastMod.IsZero() {
			x.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		if e.Priority > 0 {
			x.Priority = fmt.Sprintf("%.1f", e.Priority)
		}
		for _, a := range e.Alternates {
			x.Links = append(x.Links, xmlLink{Rel: "alternate", Hreflang: a.Hreflang, Href: a.Href})
		}
		set.URLs = append(set.URLs, x)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return enc.Flush()
}

// Robots renders robots.txt allowing everything except disallow and
// pointing crawlers at the sitemap.
func Robots(baseURL string, disallow []string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, p := range disallow {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n")
	return b.String()
}
