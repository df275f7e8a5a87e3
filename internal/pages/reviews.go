package pages

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabomsambo/silce/internal/forms"
	"github.com/gabomsambo/silce/internal/format"
	"github.com/gabomsambo/silce/internal/i18n"
	"github.com/gabomsambo/silce/internal/nav"
	"github.com/gabomsambo/silce/internal/reviews"
)

// ReviewsQuery is the filter and window state of the reviews page.
type ReviewsQuery struct {
	Filter  reviews.Filter
	Visible int
}

// ParseReviewsQuery reads filters from the query string. Unknown platforms and
// ratings other than 1, 4 and 5 are ignored; the window grows in PageSize steps.
func ParseReviewsQuery(q url.Values) ReviewsQuery {
	var out ReviewsQuery
	out.Filter.PropertySlug = strings.TrimSpace(q.Get("property"))
	switch n, _ := strconv.Atoi(q.Get("rating")); n {
	case 1, 4, 5:
		out.Filter.MinRating = n
	}
	if p := reviews.Platform(q.Get("platform")); p.Valid() {
		out.Filter.Platform = p
	}
	out.Visible = reviews.PageSize
	if n, err := strconv.Atoi(q.Get("show")); err == nil && n > reviews.PageSize {
		out.Visible = (n + reviews.PageSize - 1) / reviews.PageSize * reviews.PageSize
	}
	return out
}

// Values encodes q back into query parameters, omitting defaults.
func (q ReviewsQuery) Values() url.Values {
	v := url.Values{}
	if q.Filter.PropertySlug != "" {
		v.Set("property", q.Filter.PropertySlug)
	}
	if q.Filter.MinRating > 0 {
		v.Set("rating", strconv.Itoa(q.Filter.MinRating))
	}
	if q.Filter.Platform != "" {
		v.Set("platform", string(q.Filter.Platform))
	}
	if q.Visible > reviews.PageSize {
		v.Set("show", strconv.Itoa(q.Visible))
	}
	return v
}

// ReviewState is the posted state of the submission form.
type ReviewState struct {
	Values forms.ReviewSubmission
	Errors forms.FieldErrors
	Failed bool
	Sent   bool
}

// Option is a select option.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ReviewForm is the submission form view. Values are kept on failure.
type ReviewForm struct {
	Action     string
	Values     forms.ReviewSubmission
	Errors     map[string]string
	Alert      string
	Sent       bool
	Properties []Option
	Ratings    []int
}

// PlatformBadge is one platform summary tile.
type PlatformBadge struct {
	Name   string
	Rating string
	Count  string
	Icon   string
}

// ReviewStats summarizes ratings. Total comes from the platform table and is
// independent of the number of reviews listed.
type ReviewStats struct {
	Heading   string
	Body      string
	Average   string
	Total     int
	Platforms []PlatformBadge
}

// ReviewCard is one listed review.
type ReviewCard struct {
	ID        string
	Guest     string
	Initial   string
	Property  string
	Rating    int
	Stars     []bool
	Text      string
	Date      string
	Platform  string
	Verified  bool
	Stay      string
	Highlight string
	Avatar    string
}

// ReviewList is the filterable grid. NextHref is empty when every match is shown.
type ReviewList struct {
	Action     string
	Properties []Option
	Ratings    []Option
	Platforms  []Option
	Cards      []ReviewCard
	Showing    string
	Empty      string
	NextHref   string
	Fragment   string
}

// Reviews composes the reviews page: hero, submission form, stats and the list.
func (c *Composer) Reviews(ctx context.Context, req Request, q ReviewsQuery, form ReviewState) (Page, error) {
	t := req.T
	avg := fmt.Sprintf("%.1f", c.reviews.AverageRating())
	total := c.reviews.TotalReviewCount()
	args := i18n.Args{"count": total, "rating": avg}
	p, err := c.base(req, RouteReviews, "/reviews", meta(t, "reviews", args, homeImage))
	if err != nil {
		return Page{}, err
	}
	p.Breadcrumbs = nav.Breadcrumbs(req.Locale, p.Path, "")
	s := t.Namespace("reviews")

	p.add("hero", Hero{Heading: s.T("hero.heading", nil), Subheading: s.T("hero.subheading", nil)})
	p.add("review_form", c.reviewForm(t, req.Locale, form))

	stats := ReviewStats{
		Heading: s.T("stats.heading", nil),
		Body:    s.T("stats.body", args),
		Average: avg,
		Total:   total,
	}
	for _, st := range c.reviews.Stats() {
		stats.Platforms = append(stats.Platforms, PlatformBadge{
			Name:   string(st.Platform),
			Rating: fmt.Sprintf("%.1f", st.Rating),
			Count:  s.T("stats.platformCount", i18n.Args{"count": st.Count}),
			Icon:   st.Icon,
		})
	}
	p.add("review_stats", stats)
	p.add("review_list", c.ReviewList(req, q))
	p.addJSONLD(c.lodging())
	return p, nil
}

// ReviewList builds just the filterable grid; htmx requests render it alone.
func (c *Composer) ReviewList(req Request, q ReviewsQuery) ReviewList {
	t := req.T
	s := t.Namespace("reviews")
	matches := c.reviews.Query(q.Filter)
	shown, more := reviews.Window(matches, q.Visible)

	list := ReviewList{
		Action:     nav.Href(req.Locale, "/reviews"),
		Properties: c.propertyOptions(s.T("filters.allProperties", nil), q.Filter.PropertySlug),
		Ratings: []Option{
			{Value: "", Label: s.T("filters.allRatings", nil), Selected: q.Filter.MinRating == 0},
			{Value: "4", Label: s.T("filters.fourPlus", nil), Selected: q.Filter.MinRating == 4},
			{Value: "5", Label: s.T("filters.five", nil), Selected: q.Filter.MinRating == 5},
		},
		Platforms: []Option{{Value: "", Label: s.T("filters.allPlatforms", nil), Selected: q.Filter.Platform == ""}},
		Showing:   s.T("list.showing", i18n.Args{"shown": len(shown), "total": len(matches)}),
		Fragment:  nav.Href(req.Locale, "/reviews/list"),
	}
	for _, pl := range reviews.Platforms {
		list.Platforms = append(list.Platforms, Option{Value: string(pl), Label: string(pl), Selected: q.Filter.Platform == pl})
	}
	if len(matches) == 0 {
		list.Empty = s.T("list.empty", nil)
	}
	for _, r := range shown {
		list.Cards = append(list.Cards, reviewCard(r, req.Locale))
	}
	if more {
		next := q
		next.Visible = q.Visible + reviews.PageSize
		list.NextHref = list.Action + "?" + next.Values().Encode()
	}
	return list
}

func reviewCard(r reviews.Review, locale string) ReviewCard {
	card := ReviewCard{
		ID:        r.ID,
		Guest:     r.GuestName,
		Property:  r.PropertyName,
		Rating:    r.Rating,
		Stars:     make([]bool, 5),
		Text:      r.Text,
		Date:      format.FmtDate(r.Date, locale),
		Platform:  string(r.Platform),
		Verified:  r.Verified,
		Stay:      r.StayDuration,
		Highlight: r.Highlight,
		Avatar:    r.Avatar,
	}
	for i := range card.Stars {
		card.Stars[i] = i < r.Rating
	}
	if rs := []rune(strings.TrimSpace(r.GuestName)); len(rs) > 0 {
		card.Initial = strings.ToUpper(string(rs[0]))
	}
	return card
}

func (c *Composer) reviewForm(t *i18n.Translator, locale string, st ReviewState) ReviewForm {
	s := t.Namespace("reviews.form")
	f := ReviewForm{
		Action:     nav.Href(locale, "/reviews"),
		Values:     st.Values,
		Errors:     translateErrors(s, st.Errors),
		Sent:       st.Sent,
		Properties: c.propertyOptions(s.T("selectProperty", nil), st.Values.PropertySlug),
		Ratings:    []int{5, 4, 3, 2, 1},
	}
	if st.Failed {
		f.Alert = s.T("failure", nil)
	}
	if st.Sent {
		f.Values = forms.ReviewSubmission{}
	}
	return f
}

func (c *Composer) propertyOptions(placeholder, selected string) []Option {
	out := []Option{{Value: "", Label: placeholder, Selected: selected == ""}}
	for _, u := range c.catalog.Units() {
		out = append(out, Option{Value: u.Slug, Label: u.Title, Selected: u.Slug == selected})
	}
	return out
}
