package pages

import (
	"context"

	"github.com/gabomsambo/silce/internal/booking"
)

// SearchWidget embeds the vendor search element. The Mask* timings drive the
// client-side property-count masking script.
type SearchWidget struct {
	Heading    string
	Subheading string
	Loading    string
	Element    booking.SearchElement
	MaskDelay  int64
	MaskEvery  int64
	MaskFor    int64
	MaskedText string
}

// Search composes the availability search page. The rendered output is masked
// server-side as well.
func (c *Composer) Search(ctx context.Context, req Request) (Page, error) {
	t := req.T
	p, err := c.base(req, RouteSearch, "/search", meta(t, "search", nil, roomsImage))
	if err != nil {
		return Page{}, err
	}
	s := t.Namespace("search")
	p.add("search", SearchWidget{
		Heading:    s.T("heading", nil),
		Subheading: s.T("subheading", nil),
		Loading:    s.T("loading", nil),
		Element:    c.bridge.SearchElement(req.Locale),
		MaskDelay:  c.poller.Delay.Milliseconds(),
		MaskEvery:  c.poller.Interval.Milliseconds(),
		MaskFor:    c.poller.Ceiling.Milliseconds(),
		MaskedText: booking.MaskedText,
	})
	p.MaskWidget = true
	return p, nil
}
