package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

// ErrUnsupportedLocale is returned for locale tokens outside the supported set.
var ErrUnsupportedLocale = errors.New("i18n: unsupported locale")

// Loader fetches the flattened message bundle of one locale.
type Loader interface {
	Load(ctx context.Context, locale string) (map[string]string, error)
}

// FSLoader reads "{locale}.json" files from an fs.FS.
// Nested objects are flattened into dot separated keys.
type FSLoader struct {
	FS  fs.FS
	Dir string
}

func (l FSLoader) Load(ctx context.Context, locale string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := locale + ".json"
	if l.Dir != "" && l.Dir != "." {
		name = path.Join(l.Dir, name)
	}
	raw, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, fmt.Errorf("load locale %s: %w", locale, err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", locale, err)
	}
	out := make(map[string]string, len(tree))
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMissingHook registers fn to be called whenever a key is absent from the requested locale.
func WithMissingHook(fn func(locale, key string)) Option {
	return func(r *Resolver) { r.onMissing = fn }
}

// Resolver validates locale tokens and hands out translators backed by cached bundles.
type Resolver struct {
	locales   []string
	supported map[string]struct{}
	fallback  string
	loader    Loader
	matcher   language.Matcher
	matched   []string
	onMissing func(locale, key string)

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]map[string]string
}

// NewResolver builds a resolver for the given locales. The fallback must be one of them.
func NewResolver(loader Loader, fallback string, supported []string, opts ...Option) (*Resolver, error) {
	if loader == nil {
		return nil, errors.New("i18n: loader is required")
	}
	if len(supported) == 0 {
		supported = []string{"en", "es"}
	}
	r := &Resolver{
		supported: make(map[string]struct{}, len(supported)),
		fallback:  fallback,
		loader:    loader,
		cache:     make(map[string]map[string]string, len(supported)),
	}
	for _, l := range supported {
		if _, dup := r.supported[l]; dup {
			continue
		}
		r.supported[l] = struct{}{}
		r.locales = append(r.locales, l)
	}
	if _, ok := r.supported[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not supported", fallback)
	}
	// the matcher falls back to its first tag, so the fallback goes first
	ordered := append([]string{fallback}, without(r.locales, fallback)...)
	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", l, err)
		}
		tags = append(tags, tag)
	}
	r.matcher = language.NewMatcher(tags)
	r.matched = ordered
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Fallback returns the configured fallback locale.
func (r *Resolver) Fallback() string { return r.fallback }

// IsSupported reports whether token is a supported locale. Matching is exact.
func (r *Resolver) IsSupported(token string) bool {
	_, ok := r.supported[token]
	return ok
}

// Resolve is shorthand for Begin(token).Resolve(ctx).
func (r *Resolver) Resolve(ctx context.Context, token string) (*Translator, error) {
	return r.Begin(token).Resolve(ctx)
}

// Preload loads every supported bundle. The fallback bundle must exist.
func (r *Resolver) Preload(ctx context.Context) error {
	for _, l := range r.locales {
		if _, err := r.bundle(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// Negotiate picks the supported locale best matching an Accept-Language header.
func (r *Resolver) Negotiate(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return r.fallback
	}
	_, idx, conf := r.matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(r.matched) {
		return r.fallback
	}
	return r.matched[idx]
}

func (r *Resolver) bundle(ctx context.Context, locale string) (map[string]string, error) {
	r.mu.RLock()
	dict, ok := r.cache[locale]
	r.mu.RUnlock()
	if ok {
		return dict, nil
	}
	// The shared load outlives any single caller; each caller still stops
	// waiting when its own context ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(locale, func() (any, error) {
		r.mu.RLock()
		dict, ok := r.cache[locale]
		r.mu.RUnlock()
		if ok {
			return dict, nil
		}
		dict, err := r.loader.Load(loadCtx, locale)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[locale] = dict
		r.mu.Unlock()
		return dict, nil
	})
	var v any
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return v.(map[string]string), nil
}

func (r *Resolver) translator(ctx context.Context, locale string) (*Translator, error) {
	dict, err := r.bundle(ctx, locale)
	if err != nil {
		return nil, err
	}
	t := &Translator{locale: locale, dict: dict, onMissing: r.onMissing}
	if locale != r.fallback {
		// a broken fallback bundle degrades to raw keys rather than failing the page
		if fb, err := r.bundle(ctx, r.fallback); err == nil {
			t.fallback = fb
		}
	}
	return t, nil
}

func without(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}

// Keys returns the sorted keys of a bundle. Used to compare locales.
func (r *Resolver) Keys(ctx context.Context, locale string) ([]string, error) {
	if !r.IsSupported(locale) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	dict, err := r.bundle(ctx, locale)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// joinKey builds "namespace.key"; an empty namespace leaves key untouched.
func joinKey(ns, key string) string {
	ns = strings.Trim(ns, ".")
	if ns == "" {
		return key
	}
	return ns + "." + key
}
