package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/i18n"
	mw "github.com/gabomsambo/silce/internal/middleware"
	"github.com/gabomsambo/silce/internal/observability"
	"github.com/gabomsambo/silce/internal/pages"
)

// templateCache holds the parsed templates for production mode.
type templateCache struct {
	mu  sync.RWMutex
	tpl *template.Template
}

func newTemplateCache() *templateCache { return &templateCache{} }

// load parses templatesDir and replaces the cached set.
func (c *templateCache) load() (*template.Template, error) {
	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.tpl = t
	c.mu.Unlock()
	return t, nil
}

// get returns the template set, reparsing on every call in dev mode.
func (c *templateCache) get() (*template.Template, error) {
	if devMode {
		return parseTemplates()
	}
	c.mu.RLock()
	t := c.tpl
	c.mu.RUnlock()
	if t == nil {
		return c.load()
	}
	return t, nil
}

var funcMap = template.FuncMap{
	"now": time.Now,
	// t translates a dotted key; trailing arguments are name/value pairs.
	"t": func(tr *i18n.Translator, key string, pairs ...any) string {
		return tr.T("", key, argsFromPairs(pairs))
	},
	"jsonld": func(s string) template.JS { return template.JS(s) },
	"add":    func(a, b int) int { return a + b },
	"upper":  strings.ToUpper,
}

func argsFromPairs(pairs []any) i18n.Args {
	if len(pairs) < 2 {
		return nil
	}
	args := make(i18n.Args, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			args[k] = pairs[i+1]
		}
	}
	return args
}

func parseTemplates() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// view is the root template data: the composed page plus request-scoped values.
type view struct {
	pages.Page
	CSRF string
}

// block is what section templates receive.
type block struct {
	pages.Section
	Lang string
	CSRF string
}

// Blocks pairs each section with the request-scoped values templates need.
func (v view) Blocks() []block {
	out := make([]block, len(v.Sections))
	for i, s := range v.Sections {
		out[i] = block{Section: s, Lang: v.Lang, CSRF: v.CSRF}
	}
	return out
}

// render executes the base layout into a buffer so the status code and the
// widget mask can be applied before anything is written.
func (a *app) render(w http.ResponseWriter, r *http.Request, p pages.Page) {
	a.execute(w, r, p.Status, "base", view{Page: p, CSRF: mw.CSRFToken(r.Context())}, p.MaskWidget)
}

// renderSection executes a single section template, used for htmx swaps.
// Fragments are never masked: the parser would wrap them in a full document.
func (a *app) renderSection(w http.ResponseWriter, r *http.Request, p pages.Page, kind string) {
	s, ok := p.Find(kind)
	if !ok {
		a.ErrorHandler(w, r)
		return
	}
	a.execute(w, r, p.Status, "section", block{Section: s, Lang: p.Lang, CSRF: mw.CSRFToken(r.Context())}, false)
}

func (a *app) execute(w http.ResponseWriter, r *http.Request, status int, name string, data any, mask bool) {
	logger := observability.FromContext(r.Context())
	t, err := tmplCache.get()
	if err != nil {
		logger.Error("template parse error", zap.Error(err))
		http.Error(w, "template parse error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("template exec error", zap.String("template", name), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	out := buf.Bytes()
	if mask {
		masked, n, err := a.masker.MaskBytes(out)
		switch {
		case err != nil:
			// unmasked output is still a valid page
			logger.Warn("widget mask failed", zap.Error(err))
		case n > 0:
			out = masked
			logger.Debug("widget counts masked", zap.Int("nodes", n))
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
