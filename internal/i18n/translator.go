package i18n

import (
	"fmt"
	"strings"
)

// Args are named interpolation values for "{name}" placeholders.
type Args map[string]any

// Translator looks up messages for one resolved locale.
type Translator struct {
	locale    string
	dict      map[string]string
	fallback  map[string]string
	onMissing func(locale, key string)
}

// NewTranslator wraps an already flattened bundle. Mostly useful in tests.
func NewTranslator(locale string, dict, fallback map[string]string) *Translator {
	return &Translator{locale: locale, dict: dict, fallback: fallback}
}

// Locale returns the active locale.
func (t *Translator) Locale() string {
	if t == nil {
		return ""
	}
	return t.locale
}

// Lookup returns the interpolated message for ns.key. The bool is false when the
// key exists in neither the locale nor the fallback bundle, in which case the raw
// key is returned.
func (t *Translator) Lookup(ns, key string, args Args) (string, bool) {
	full := joinKey(ns, key)
	if t == nil {
		return full, false
	}
	if v, ok := t.dict[full]; ok {
		return interpolate(v, args), true
	}
	if t.onMissing != nil {
		t.onMissing(t.locale, full)
	}
	if v, ok := t.fallback[full]; ok {
		return interpolate(v, args), true
	}
	return full, false
}

// T translates ns.key, returning the raw key when it is missing. It never fails.
func (t *Translator) T(ns, key string, args Args) string {
	v, _ := t.Lookup(ns, key, args)
	return v
}

// Plural uses key when n is 1 and key+"Plural" otherwise.
func (t *Translator) Plural(ns, key string, n int, args Args) string {
	if n != 1 {
		key += "Plural"
	}
	return t.T(ns, key, args)
}

// Namespace scopes lookups under ns.
func (t *Translator) Namespace(ns string) Scope { return Scope{t: t, ns: ns} }

// Scope is a Translator bound to a namespace.
type Scope struct {
	t  *Translator
	ns string
}

func (s Scope) T(key string, args Args) string { return s.t.T(s.ns, key, args) }

func (s Scope) Plural(key string, n int, args Args) string { return s.t.Plural(s.ns, key, n, args) }

// interpolate replaces {name} placeholders with args[name]. Unknown placeholders are kept.
func interpolate(s string, args Args) string {
	if len(args) == 0 || !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '{' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		name := s[i+1 : i+end]
		if v, ok := args[name]; ok && isIdent(name) {
			b.WriteString(fmt.Sprint(v))
		} else {
			b.WriteString(s[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
