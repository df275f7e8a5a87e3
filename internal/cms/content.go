package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a content page exists in no candidate locale.
var ErrNotFound = errors.New("cms: not found")

// Page is a localized markdown section, e.g. the about page founder story.
type Page struct {
	Section   string
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Image     string
	ImageAlt  string
	Body      string
	HTML      template.HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Lang      string `yaml:"lang"`
	Image     string `yaml:"image"`
	ImageAlt  string `yaml:"image_alt"`
	UpdatedAt string `yaml:"updated_at"`
}

// Store reads pages from {section}/{lang}/{slug}.md under an fs.FS.
type Store struct {
	fsys     fs.FS
	fallback string
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithCacheTTL sets how long rendered pages are kept. Zero disables caching,
// which dev mode uses so edits show up on reload.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

// New builds a Store rooted at fsys. fallback is tried when a page is missing
// in the requested locale.
func New(fsys fs.FS, fallback string, opts ...Option) *Store {
	s := &Store{
		fsys:     fsys,
		fallback: fallback,
		md:       goldmark.New(goldmark.WithExtensions(extension.Typographer)),
		policy:   newHTMLPolicy(),
		ttl:      5 * time.Minute,
		now:      time.Now,
		cache:    map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Get returns section/slug in lang, falling back to the store's fallback locale.
func (s *Store) Get(ctx context.Context, section, slug, lang string) (Page, error) {
	section = sanitizeSegment(section)
	slug = sanitizeSegment(slug)
	if section == "" || slug == "" {
		return Page{}, ErrNotFound
	}

	key := strings.Join([]string{section, lang, slug}, "|")
	if page, ok := s.cached(key); ok {
		return page, nil
	}

	candidates := []string{lang}
	if lang != s.fallback {
		candidates = append(candidates, s.fallback)
	}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		page, err := s.read(section, slug, candidate)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		s.store(key, page)
		return page, nil
	}
	return Page{}, ErrNotFound
}

func (s *Store) read(section, slug, lang string) (Page, error) {
	if lang == "" {
		return Page{}, ErrNotFound
	}
	file := path.Join(section, lang, slug+".md")
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("cms: read %s: %w", file, err)
	}

	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page := Page{
		Section:   section,
		Slug:      slug,
		Lang:      firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		Image:     strings.TrimSpace(front.Image),
		ImageAlt:  strings.TrimSpace(front.ImageAlt),
		Body:      body,
		HTML:      template.HTML(s.policy.SanitizeBytes(buf.Bytes())),
		UpdatedAt: parseDate(front.UpdatedAt),
	}
	if page.UpdatedAt.IsZero() {
		if info, err := fs.Stat(s.fsys, file); err == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

func (s *Store) cached(key string) (Page, bool) {
	if s.ttl <= 0 {
		return Page{}, false
	}
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page, true
}

func (s *Store) store(key string, page Page) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{page: page, expires: s.now().Add(s.ttl)}
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		if runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] -= 'a' - 'A'
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func sanitizeSegment(v string) string {
	v = strings.Trim(strings.TrimSpace(strings.ToLower(v)), "/")
	if v == "" || strings.Contains(v, "..") || strings.ContainsAny(v, `/\`) {
		return ""
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
