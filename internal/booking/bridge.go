package booking

import (
	"net/url"
	"strings"

	"github.com/gabomsambo/silce/internal/catalog"
)

// PassThroughParams are the inbound query parameters forwarded to the booking
// widget, in the order they are appended.
var PassThroughParams = []string{"checkin", "checkout", "adults", "children", "infants", "pets"}

// FrameSandbox is the sandbox policy applied to the booking iframe.
const FrameSandbox = "allow-top-navigation allow-scripts allow-same-origin"

// SearchElementTag is the vendor custom element rendering the property search.
const SearchElementTag = "hospitable-direct-mps"

// Config addresses one account on the hosted booking provider.
type Config struct {
	Host           string
	AccountID      string
	SearchWidgetID string
	SearchScript   string
}

// Bridge builds outbound widget configuration. It performs no validation of
// dates or occupant counts; the provider owns that.
type Bridge struct {
	cfg Config
}

func NewBridge(cfg Config) *Bridge {
	cfg.Host = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(cfg.Host, "https://"), "http://"), "/")
	return &Bridge{cfg: cfg}
}

// ScriptURL is the vendor script that defines the search custom element.
func (b *Bridge) ScriptURL() string { return b.cfg.SearchScript }

// Base returns the widget URL for a provider id without any query.
func (b *Bridge) Base(providerID string) string {
	return "https://" + b.cfg.Host + "/widget/" + url.PathEscape(b.cfg.AccountID) + "/" + url.PathEscape(providerID)
}

// URL appends the pass-through parameters present in query to the widget URL.
// A parameter is present when its first value is non-empty. Values are not
// validated; they are query-escaped so one value cannot add parameters.
func (b *Bridge) URL(providerID string, query url.Values) string {
	base := b.Base(providerID)
	pairs := make([]string, 0, len(PassThroughParams))
	for _, key := range PassThroughParams {
		if v := query.Get(key); v != "" {
			pairs = append(pairs, key+"="+url.QueryEscape(v))
		}
	}
	if len(pairs) == 0 {
		return base
	}
	return base + "?" + strings.Join(pairs, "&")
}

// Frame describes the booking iframe of a unit detail page.
type Frame struct {
	ID      string
	Src     string
	Title   string
	Sandbox string
	Height  int
}

// Frame builds the iframe for u. title is the already localized accessible title.
func (b *Bridge) Frame(u catalog.Unit, query url.Values, title string) Frame {
	return Frame{
		ID:      "booking-iframe",
		Src:     b.URL(u.ProviderID, query),
		Title:   title,
		Sandbox: FrameSandbox,
		Height:  600,
	}
}

// SearchElement configures the vendor search custom element.
type SearchElement struct {
	Tag        string
	Identifier string
	Type       string
	ResultsURL string
	ScriptURL  string
}

// SearchElement returns the element for locale. Its results URL embeds the
// locale, so it must be recomputed whenever the active locale changes.
func (b *Bridge) SearchElement(locale string) SearchElement {
	return SearchElement{
		Tag:        SearchElementTag,
		Identifier: b.cfg.SearchWidgetID,
		Type:       "custom",
		ResultsURL: "/" + locale + "/search",
		ScriptURL:  b.cfg.SearchScript,
	}
}
