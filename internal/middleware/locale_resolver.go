package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/i18n"
	"github.com/gabomsambo/silce/internal/observability"
)

// LocaleParam is the chi URL parameter holding the locale token.
const LocaleParam = "locale"

// Locale resolves the {locale} URL parameter before any page composition runs.
// Unsupported tokens are terminal and go to notFound; a bundle that fails to
// load goes to failed. Either handler may be nil for a bare status code.
func Locale(resolver *i18n.Resolver, metrics *observability.Metrics, notFound, failed http.Handler) func(http.Handler) http.Handler {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	if failed == nil {
		failed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		})
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := resolver.Begin(chi.URLParam(r, LocaleParam))
			t, err := res.Resolve(r.Context())
			switch {
			case errors.Is(err, i18n.ErrUnsupportedLocale):
				metrics.NotFound("locale")
				notFound.ServeHTTP(w, r)
				return
			case err != nil:
				observability.FromContext(r.Context()).Error("locale bundle failed to load",
					zap.String("locale", res.Token()), zap.Error(err))
				failed.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Language", t.Locale())
			ctx := WithLocale(r.Context(), t.Locale(), t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
