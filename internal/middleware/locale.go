package middleware

import (
	"net/http"
	"strings"

	"github.com/gabomsambo/silce/internal/i18n"
)

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// append to existing Vary if any
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// RedirectToLocale sends unprefixed paths to the negotiated locale prefix.
// "/" goes to "/{locale}", "/rooms/a" to "/{locale}/rooms/a"; the query is kept.
func RedirectToLocale(resolver *i18n.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := resolver.Negotiate(r.Header.Get("Accept-Language"))
		target := "/" + locale
		if p := strings.TrimSuffix(r.URL.Path, "/"); p != "" {
			target += p
		}
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		w.Header().Add("Vary", "Accept-Language")
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}
