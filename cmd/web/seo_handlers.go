package main

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/observability"
	"github.com/gabomsambo/silce/internal/seo"
)

// SitemapHandler lists every locale-prefixed static route and room page.
func (a *app) SitemapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := seo.WriteSitemap(w, a.composer.Sitemap(a.builtAt)); err != nil {
		observability.FromContext(r.Context()).Error("write sitemap", zap.Error(err))
	}
}

// RobotsHandler serves robots.txt pointing at the sitemap.
func (a *app) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, seo.Robots(a.composer.Site().BaseURL, robotsDisallow))
}

type manifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Orientation     string         `json:"orientation"`
	Icons           []manifestIcon `json:"icons"`
}

var manifest = webManifest{
	Name:            "Silver Pineapple | Boutique Short-Term Rentals",
	ShortName:       "Silver Pineapple",
	Description:     "Boutique short-term rentals in Eau Gallie, Melbourne FL. Steps from the arts district, minutes to beaches.",
	StartURL:        "/",
	Display:         "standalone",
	BackgroundColor: "#1a1a1a",
	ThemeColor:      "#D2B48C",
	Orientation:     "portrait",
	Icons: []manifestIcon{
		{Src: "/assets/icon.png", Sizes: "192x192", Type: "image/png", Purpose: "any maskable"},
		{Src: "/assets/icon.png", Sizes: "512x512", Type: "image/png", Purpose: "any maskable"},
	},
}

// ManifestHandler serves the web app manifest.
func (a *app) ManifestHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	if err := json.NewEncoder(w).Encode(manifest); err != nil {
		observability.FromContext(r.Context()).Error("write manifest", zap.Error(err))
	}
}
