package middleware

import (
	"context"

	"github.com/gabomsambo/silce/internal/i18n"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID  ctxKey = "req_id"
	ctxKeyIsHTMX     ctxKey = "is_htmx"
	ctxKeyLocale     ctxKey = "locale"
	ctxKeyTranslator ctxKey = "translator"
	ctxKeyCSRF       ctxKey = "csrf"
	ctxKeyLogFields  ctxKey = "log_fields"
)

// logFields collects values resolved further down the chain that the request
// log needs once the handler returns.
type logFields struct {
	locale string
}

func withLogFields(ctx context.Context) (context.Context, *logFields) {
	lf := &logFields{}
	return context.WithValue(ctx, ctxKeyLogFields, lf), lf
}

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithLocale stores the resolved locale and its translator.
func WithLocale(ctx context.Context, locale string, t *i18n.Translator) context.Context {
	if lf, ok := ctx.Value(ctxKeyLogFields).(*logFields); ok {
		lf.locale = locale
	}
	ctx = context.WithValue(ctx, ctxKeyLocale, locale)
	return context.WithValue(ctx, ctxKeyTranslator, t)
}

// LocaleFrom returns the resolved locale, or "" outside a locale-prefixed route.
func LocaleFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyLocale).(string)
	return v
}

// Translator returns the translator of the resolved locale, if any.
func Translator(ctx context.Context) *i18n.Translator {
	t, _ := ctx.Value(ctxKeyTranslator).(*i18n.Translator)
	return t
}

// CSRFToken returns the token issued for this request.
func CSRFToken(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyCSRF).(string)
	return v
}
