package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gabomsambo/silce/internal/catalog"
)

// DefaultImage is used wherever a unit publishes no photos.
const DefaultImage = "/og-rooms.jpg"

var usd = message.NewPrinter(language.AmericanEnglish)

// FmtPrice formats a nightly rate in whole US dollars.
// Example: FmtPrice(1299) => "$1,299"
func FmtPrice(amount int) string {
	if amount < 0 {
		return "-$" + usd.Sprintf("%d", -amount)
	}
	return "$" + usd.Sprintf("%d", amount)
}

// FmtDate formats a review date as month and year.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "es":
		return fmt.Sprintf("%s %d", esMonths[t.Month()-1], t.Year())
	default:
		return t.Format("Jan 2006")
	}
}

var esMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// CoverImage returns the first image of u or DefaultImage.
func CoverImage(u catalog.Unit) string {
	if len(u.Images) == 0 {
		return DefaultImage
	}
	return u.Images[0]
}

// Gallery returns the images of u, or a single DefaultImage when it has none.
func Gallery(u catalog.Unit) []string {
	if len(u.Images) == 0 {
		return []string{DefaultImage}
	}
	return append([]string(nil), u.Images...)
}

// Wording holds the language-dependent phrases used to describe a unit.
// Count phrases are fmt verbs taking the count; singular forms are used for exactly one.
type Wording struct {
	Area         string // "%d sq ft"
	ApproxArea   string // "~%d sq ft"
	Floor        string // "%s level"
	Bedroom      string
	Bedrooms     string
	Bathroom     string
	Bathrooms    string
	Guest        string
	Guests       string
	Highlights   string
	Neighborhood string
	MetaTail     string
}

// EnglishWording is the house copy used across the site.
var EnglishWording = Wording{
	Area:         "%d sq ft",
	ApproxArea:   "~%d sq ft",
	Floor:        "%s level",
	Bedroom:      "%d bedroom",
	Bedrooms:     "%d bedrooms",
	Bathroom:     "%d bathroom",
	Bathrooms:    "%d bathrooms",
	Guest:        "%d guest",
	Guests:       "%d guests",
	Highlights:   "Highlights:",
	Neighborhood: "Walk to the Eau Gallie Public Library, EGAD murals, cafés, and riverfront parks; beaches in ~10–15 minutes.",
	MetaTail:     "Walk to library, murals, cafés; beach in 10–15 min. Book at Silver Pineapple.",
}

var SpanishWording = Wording{
	Area:         "%d pies²",
	ApproxArea:   "~%d pies²",
	Floor:        "nivel %s",
	Bedroom:      "%d dormitorio",
	Bedrooms:     "%d dormitorios",
	Bathroom:     "%d baño",
	Bathrooms:    "%d baños",
	Guest:        "%d huésped",
	Guests:       "%d huéspedes",
	Highlights:   "Destacados:",
	Neighborhood: "A pie de la Biblioteca Pública de Eau Gallie, los murales EGAD, cafés y parques junto al río; playas a ~10–15 minutos.",
	MetaTail:     "A pie de la biblioteca, murales y cafés; playa a 10–15 min. Reserva en Silver Pineapple.",
}

// WordingFor returns the wording for lang, defaulting to English.
func WordingFor(lang string) Wording {
	if strings.EqualFold(lang, "es") {
		return SpanishWording
	}
	return EnglishWording
}

const (
	shortSep = " · "
	extraSep = ", "
)

// Count renders n with the singular phrase when n is 1 and the plural phrase otherwise.
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf(singular, n)
	}
	return fmt.Sprintf(plural, n)
}

// Short joins the published attributes of u. Absent attributes are skipped.
func (w Wording) Short(u catalog.Unit) string {
	bits := make([]string, 0, 3+len(u.Extras))
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			bits = append(bits, s)
		}
	}
	add(u.BedType)
	if u.SqFt > 0 {
		add(fmt.Sprintf(w.Area, u.SqFt))
	}
	if u.Floor != "" {
		add(fmt.Sprintf(w.Floor, u.Floor))
	}
	for _, e := range u.Extras {
		add(e)
	}
	return strings.Join(bits, shortSep)
}

// Long combines the category blurb, a highlights clause and the neighborhood line.
func (w Wording) Long(u catalog.Unit, c catalog.Category) string {
	specifics := make([]string, 0, 6)
	if u.SqFt > 0 {
		specifics = append(specifics, fmt.Sprintf(w.ApproxArea, u.SqFt))
	}
	specifics = append(specifics,
		Count(u.Bedrooms, w.Bedroom, w.Bedrooms),
		Count(u.Bathrooms, w.Bathroom, w.Bathrooms),
		Count(u.MaxGuests, w.Guest, w.Guests),
	)
	if u.BedType != "" {
		specifics = append(specifics, u.BedType)
	}
	if extras := nonBlank(u.Extras); len(extras) > 0 {
		specifics = append(specifics, strings.Join(extras, extraSep))
	}

	parts := make([]string, 0, 3)
	if blurb := strings.TrimSpace(c.Blurb); blurb != "" {
		parts = append(parts, blurb)
	}
	parts = append(parts, w.Highlights+" "+strings.Join(specifics, shortSep)+".", w.Neighborhood)
	return strings.Join(parts, " ")
}

// Meta builds the meta description for a unit detail page.
func (w Wording) Meta(u catalog.Unit) string {
	var b strings.Builder
	b.WriteString(u.Title)
	b.WriteString(": ")
	if short := w.Short(u); short != "" {
		b.WriteString(short)
		b.WriteString(shortSep)
	}
	b.WriteString(w.MetaTail)
	return b.String()
}

// ShortDescription is EnglishWording.Short.
func ShortDescription(u catalog.Unit) string { return EnglishWording.Short(u) }

// LongDescription is EnglishWording.Long.
func LongDescription(u catalog.Unit, c catalog.Category) string { return EnglishWording.Long(u, c) }

// MetaDescription is EnglishWording.Meta.
func MetaDescription(u catalog.Unit) string { return EnglishWording.Meta(u) }

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
