package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/forms"
	mw "github.com/gabomsambo/silce/internal/middleware"
	"github.com/gabomsambo/silce/internal/nav"
	"github.com/gabomsambo/silce/internal/observability"
	"github.com/gabomsambo/silce/internal/pages"
)

// request collects what the composer needs. Locale and translator were set
// by the locale middleware.
func (a *app) request(r *http.Request) pages.Request {
	ctx := r.Context()
	return pages.Request{
		Locale: mw.LocaleFrom(ctx),
		T:      mw.Translator(ctx),
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
	}
}

// page renders p, or the not-found/error page when composition failed.
func (a *app) page(w http.ResponseWriter, r *http.Request, p pages.Page, err error) {
	switch {
	case errors.Is(err, pages.ErrNotFound):
		a.metrics.NotFound("unit")
		a.NotFoundHandler(w, r)
	case err != nil:
		observability.FromContext(r.Context()).Error("compose page failed", zap.String("path", r.URL.Path), zap.Error(err))
		a.ErrorHandler(w, r)
	default:
		a.render(w, r, p)
	}
}

// HomeHandler renders the landing page.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.composer.Home(r.Context(), a.request(r), pages.NewsletterState{})
	a.page(w, r, p, err)
}

// AboutHandler renders the about page.
func (a *app) AboutHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.composer.About(r.Context(), a.request(r))
	a.page(w, r, p, err)
}

// RoomsHandler renders the rooms index.
func (a *app) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.composer.Rooms(r.Context(), a.request(r))
	a.page(w, r, p, err)
}

// RoomHandler renders one unit. The inbound query is forwarded to the booking frame.
func (a *app) RoomHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.composer.Room(r.Context(), a.request(r), chi.URLParam(r, "slug"))
	a.page(w, r, p, err)
}

// ReviewsHandler renders the reviews page, or only the list for htmx requests.
func (a *app) ReviewsHandler(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		a.ReviewListHandler(w, r)
		return
	}
	p, err := a.composer.Reviews(r.Context(), a.request(r), pages.ParseReviewsQuery(r.URL.Query()), pages.ReviewState{})
	a.page(w, r, p, err)
}

// ReviewListHandler renders the filterable review grid as a fragment.
func (a *app) ReviewListHandler(w http.ResponseWriter, r *http.Request) {
	req := a.request(r)
	list := a.composer.ReviewList(req, pages.ParseReviewsQuery(r.URL.Query()))
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Push-Url", list.Action+queryOf(r))
	}
	p := pages.Page{Lang: req.Locale, Status: http.StatusOK, T: req.T}
	p.Sections = []pages.Section{{Kind: "review_list", Data: list, T: req.T}}
	a.renderSection(w, r, p, "review_list")
}

// SearchHandler renders the availability search page.
func (a *app) SearchHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.composer.Search(r.Context(), a.request(r))
	a.page(w, r, p, err)
}

// ReviewSubmitHandler validates and forwards a guest review. Field errors
// answer 400 and a forwarding failure 502; both keep the entered values.
func (a *app) ReviewSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := a.request(r)
	in := forms.ReviewFromForm(r.PostForm)
	_, fieldErrs, err := a.forms.SubmitReview(r.Context(), req.Locale, in)

	state := pages.ReviewState{Values: in}
	status := submissionStatus(fieldErrs, err)
	switch status {
	case http.StatusBadRequest:
		state.Errors = fieldErrs
	case http.StatusBadGateway:
		state.Failed = true
	default:
		state.Sent = true
	}

	p, perr := a.composer.Reviews(r.Context(), req, pages.ParseReviewsQuery(r.URL.Query()), state)
	if perr != nil {
		a.page(w, r, p, perr)
		return
	}
	p.Status = status
	if mw.IsHTMX(r.Context()) {
		a.renderSection(w, r, p, "review_form")
		return
	}
	a.render(w, r, p)
}

// NewsletterHandler validates and forwards a signup, then re-renders the home page.
func (a *app) NewsletterHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := a.request(r)
	in := forms.NewsletterFromForm(r.PostForm)
	_, fieldErrs, err := a.forms.SubscribeNewsletter(r.Context(), req.Locale, in)

	state := pages.NewsletterState{Values: in}
	status := submissionStatus(fieldErrs, err)
	switch status {
	case http.StatusBadRequest:
		state.Errors = fieldErrs
	case http.StatusBadGateway:
		state.Failed = true
	default:
		state.Sent = true
	}

	req.Path = nav.Href(req.Locale, "/")
	p, perr := a.composer.Home(r.Context(), req, state)
	if perr != nil {
		a.page(w, r, p, perr)
		return
	}
	p.Status = status
	if mw.IsHTMX(r.Context()) {
		a.renderSection(w, r, p, "newsletter")
		return
	}
	a.render(w, r, p)
}

func submissionStatus(fieldErrs forms.FieldErrors, err error) int {
	switch {
	case len(fieldErrs) > 0:
		return http.StatusBadRequest
	case err != nil:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// NotFoundHandler renders the 404 page. Outside a resolved locale it falls
// back to the default locale.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := a.fallbackRequest(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.render(w, r, a.composer.NotFound(req))
}

// ErrorHandler renders the generic 500 page.
func (a *app) ErrorHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := a.fallbackRequest(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	a.render(w, r, a.composer.Error(req))
}

// routeNotFound counts unmatched routes before rendering the 404 page.
func (a *app) routeNotFound(w http.ResponseWriter, r *http.Request) {
	a.metrics.NotFound("route")
	a.NotFoundHandler(w, r)
}

func (a *app) fallbackRequest(r *http.Request) (pages.Request, bool) {
	req := a.request(r)
	if req.T != nil {
		return req, true
	}
	t, err := a.resolver.Resolve(r.Context(), a.resolver.Fallback())
	if err != nil {
		observability.FromContext(r.Context()).Error("fallback locale unavailable", zap.Error(err))
		return req, false
	}
	req.Locale = t.Locale()
	req.T = t
	return req, true
}

func queryOf(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return ""
	}
	return "?" + r.URL.RawQuery
}
