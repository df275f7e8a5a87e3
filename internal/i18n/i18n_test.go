package i18n

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"en.json": {Data: []byte(`{
			"common": {"greeting": "Hello {name}", "onlyEn": "English only"},
			"rooms": {"specsBedrooms": "{bedrooms} bedroom", "specsBedroomsPlural": "{bedrooms} bedrooms"},
			"count": 3
		}`)},
		"es.json": {Data: []byte(`{
			"common": {"greeting": "Hola {name}"},
			"rooms": {"specsBedrooms": "{bedrooms} habitación", "specsBedroomsPlural": "{bedrooms} habitaciones"}
		}`)},
	}
}

type countingLoader struct {
	inner Loader
	calls atomic.Int32
}

func (c *countingLoader) Load(ctx context.Context, locale string) (map[string]string, error) {
	c.calls.Add(1)
	return c.inner.Load(ctx, locale)
}

// gateLoader blocks loads of one locale until release is closed.
type gateLoader struct {
	inner   Loader
	locale  string
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gateLoader) Load(ctx context.Context, locale string) (map[string]string, error) {
	if locale == g.locale {
		if g.calls.Add(1) == 1 {
			close(g.started)
		}
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.inner.Load(ctx, locale)
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(FSLoader{FS: testFS()}, "en", []string{"en", "es"}, opts...)
	require.NoError(t, err)
	return r
}

func TestNegotiateHonorsQValues(t *testing.T) {
	b, err := NewResolver(FSLoader{FS: os.DirFS("../../locales")}, "en", []string{"en", "es"})
	require.NoError(t, err)

	assert.Equal(t, "en", b.Negotiate("es;q=0.8, en;q=0.9"))
	assert.Equal(t, "es", b.Negotiate("es-MX,es;q=0.9,en;q=0.5"))
	assert.Equal(t, "en", b.Negotiate("fr-FR"))
	assert.Equal(t, "en", b.Negotiate(""))
	assert.Equal(t, "en", b.Negotiate(";;;garbage"))
}

func TestBeginRejectsUnsupportedLocale(t *testing.T) {
	r := newTestResolver(t)
	for _, token := range []string{"fr", "", "EN", "en-US", "es/"} {
		res := r.Begin(token)
		assert.Equal(t, NotFound, res.State(), token)
		tr, err := res.Resolve(context.Background())
		assert.Nil(t, tr)
		assert.True(t, errors.Is(err, ErrUnsupportedLocale), token)
		assert.Equal(t, NotFound, res.State(), "not found is terminal")
	}
}

func TestResolutionTransitions(t *testing.T) {
	r := newTestResolver(t)
	res := r.Begin("es")
	assert.Equal(t, Unresolved, res.State())

	tr, err := res.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Resolved, res.State())
	assert.Equal(t, "es", tr.Locale())

	again, err := res.Resolve(context.Background())
	require.NoError(t, err)
	assert.Same(t, tr, again)
}

func TestResolveLoadFailureStaysUnresolved(t *testing.T) {
	r, err := NewResolver(FSLoader{FS: fstest.MapFS{}}, "en", []string{"en"})
	require.NoError(t, err)
	res := r.Begin("en")
	_, err = res.Resolve(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedLocale))
	assert.Equal(t, Unresolved, res.State())
}

func TestBundlesLoadOncePerLocale(t *testing.T) {
	loader := &countingLoader{inner: FSLoader{FS: testFS()}}
	r, err := NewResolver(loader, "en", []string{"en", "es"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "es")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(2), loader.calls.Load(), "es plus the en fallback")
}

func TestCancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	loader := &gateLoader{
		inner:   FSLoader{FS: testFS()},
		locale:  "es",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r, err := NewResolver(loader, "en", []string{"en", "es"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "es")
		first <- err
	}()
	<-loader.started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	// the load is still in flight, so this caller joins it
	second := make(chan error, 1)
	go func() {
		tr, err := r.Resolve(context.Background(), "es")
		if err == nil {
			assert.Equal(t, "Hola Ana", tr.T("common", "greeting", Args{"name": "Ana"}))
		}
		second <- err
	}()
	close(loader.release)
	require.NoError(t, <-second)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestTranslateInterpolatesAndFallsBack(t *testing.T) {
	var missing []string
	r := newTestResolver(t, WithMissingHook(func(locale, key string) {
		missing = append(missing, locale+":"+key)
	}))
	es, err := r.Resolve(context.Background(), "es")
	require.NoError(t, err)

	assert.Equal(t, "Hola Ana", es.T("common", "greeting", Args{"name": "Ana"}))
	assert.Equal(t, "Hola {name}", es.T("common", "greeting", nil))
	assert.Equal(t, "English only", es.T("common", "onlyEn", nil), "falls back to default locale")
	assert.Equal(t, []string{"es:common.onlyEn"}, missing)

	en, err := r.Resolve(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, "3", en.T("", "count", nil))
}

func TestTranslateMissingKeyReturnsRawKey(t *testing.T) {
	r := newTestResolver(t)
	tr, err := r.Resolve(context.Background(), "en")
	require.NoError(t, err)

	assert.Equal(t, "nonexistent.key", tr.T("", "nonexistent.key", nil))
	assert.Equal(t, "nonexistent.key", tr.T("nonexistent", "key", nil))

	v, ok := tr.Lookup("common", "nope", nil)
	assert.False(t, ok)
	assert.Equal(t, "common.nope", v)

	v, ok = tr.Lookup("common", "greeting", Args{"name": "Bo"})
	assert.True(t, ok)
	assert.Equal(t, "Hello Bo", v)

	var nilT *Translator
	assert.Equal(t, "a.b", nilT.T("a", "b", nil))
}

func TestPlural(t *testing.T) {
	r := newTestResolver(t)
	es, err := r.Resolve(context.Background(), "es")
	require.NoError(t, err)
	rooms := es.Namespace("rooms")

	assert.Equal(t, "1 habitación", rooms.Plural("specsBedrooms", 1, Args{"bedrooms": 1}))
	assert.Equal(t, "0 habitaciones", rooms.Plural("specsBedrooms", 0, Args{"bedrooms": 0}))
	assert.Equal(t, "2 habitaciones", rooms.Plural("specsBedrooms", 2, Args{"bedrooms": 2}))
}

func TestInterpolateLeavesUnknownPlaceholders(t *testing.T) {
	assert.Equal(t, "a {b} c", interpolate("a {b} c", Args{"x": 1}))
	assert.Equal(t, "a 1 {", interpolate("a {x} {", Args{"x": 1}))
	assert.Equal(t, "{not valid} 1", interpolate("{not valid} {x}", Args{"not valid": 2, "x": 1}))
}

func TestShippedBundlesShareKeys(t *testing.T) {
	r, err := NewResolver(FSLoader{FS: os.DirFS("../../locales")}, "en", []string{"en", "es"})
	require.NoError(t, err)
	require.NoError(t, r.Preload(context.Background()))

	en, err := r.Keys(context.Background(), "en")
	require.NoError(t, err)
	es, err := r.Keys(context.Background(), "es")
	require.NoError(t, err)
	assert.Equal(t, en, es)
	assert.Contains(t, en, "propertyDetail.templates.specsBedroomsPlural")

	_, err = r.Keys(context.Background(), "fr")
	assert.ErrorIs(t, err, ErrUnsupportedLocale)
}

func TestNewResolverValidatesFallback(t *testing.T) {
	_, err := NewResolver(FSLoader{FS: testFS()}, "fr", []string{"en", "es"})
	require.Error(t, err)
	_, err = NewResolver(nil, "en", nil)
	require.Error(t, err)
}
