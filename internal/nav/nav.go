package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item. Path is locale-less.
type Item struct {
	Path     string // e.g. "/rooms"
	LabelKey string // key under the common namespace, e.g. "nav.rooms"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// LocaleLink points at the current page in another locale.
type LocaleLink struct {
	Locale string
	Href   string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/rooms", LabelKey: "nav.rooms"},
	{Path: "/about", LabelKey: "nav.about"},
	{Path: "/reviews", LabelKey: "nav.reviews"},
}

// Href prefixes a locale-less path with locale.
func Href(locale, p string) string {
	if p == "" || p == "/" {
		return "/" + locale
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "/" + locale + p
}

// Split separates a request path into its locale segment and the remainder.
// "/es/rooms/a" yields ("es", "/rooms/a"); "/es" yields ("es", "/").
func Split(p string) (locale, rest string) {
	clean := path.Clean("/" + p)
	trimmed := strings.TrimPrefix(clean, "/")
	if trimmed == "" {
		return "", "/"
	}
	locale, rest, _ = strings.Cut(trimmed, "/")
	return locale, "/" + rest
}

// Build renders navigation items with active state given the current request path.
func Build(locale, currentPath string) []RenderedItem {
	_, rest := Split(currentPath)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     Href(locale, it.Path),
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, rest),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// exact or prefix boundary: "/rooms" or "/rooms/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Switcher links the current page in every locale. The query string is kept
// so booking pass-through parameters survive a language change.
func Switcher(locales []string, current, currentPath, rawQuery string) []LocaleLink {
	_, rest := Split(currentPath)
	out := make([]LocaleLink, 0, len(locales))
	for _, l := range locales {
		href := Href(l, rest)
		if rawQuery != "" {
			href += "?" + rawQuery
		}
		out = append(out, LocaleLink{Locale: l, Href: href, Active: l == current})
	}
	return out
}

// Breadcrumbs builds breadcrumb entries from the current request path.
// Known top-level sections use nav label keys; deeper segments use label when
// given, or a prettified slug.
func Breadcrumbs(locale, currentPath, label string) []Crumb {
	_, rest := Split(currentPath)
	crumbs := []Crumb{{Href: Href(locale, "/"), LabelKey: "nav.home", Active: rest == "/"}}
	if rest == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(rest, "/"), "/")
	top := "/" + parts[0]
	labelKey := ""
	for _, it := range Main {
		if it.Path == top {
			labelKey = it.LabelKey
			break
		}
	}
	crumbs = append(crumbs, Crumb{Href: Href(locale, top), LabelKey: labelKey, Label: titleFromSegment(parts[0]), Active: len(parts) == 1})

	href := top
	for i := 1; i < len(parts); i++ {
		href += "/" + parts[i]
		c := Crumb{Href: Href(locale, href), Label: titleFromSegment(parts[i]), Active: i == len(parts)-1}
		if c.Active && label != "" {
			c.Label = label
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
