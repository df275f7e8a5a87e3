package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/booking"
	"github.com/gabomsambo/silce/internal/catalog"
	"github.com/gabomsambo/silce/internal/cms"
	"github.com/gabomsambo/silce/internal/config"
	"github.com/gabomsambo/silce/internal/forms"
	"github.com/gabomsambo/silce/internal/i18n"
	mw "github.com/gabomsambo/silce/internal/middleware"
	"github.com/gabomsambo/silce/internal/observability"
	"github.com/gabomsambo/silce/internal/pages"
	"github.com/gabomsambo/silce/internal/reviews"
	"github.com/gabomsambo/silce/internal/seo"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode reparses templates on every request; set from SP_WEB_ENV
	devMode   bool
	tmplCache = newTemplateCache()
)

const contactEmail = "silverpineapplehosto@gmail.com"

// robotsDisallow are paths crawlers are asked to skip.
var robotsDisallow = []string{"/test-booking", "/hospitable-config", "/api/"}

// app holds the long-lived collaborators shared by every handler.
type app struct {
	logger   *zap.Logger
	metrics  *observability.Metrics
	resolver *i18n.Resolver
	composer *pages.Composer
	forms    *forms.Service
	limiter  *mw.RateLimiter
	masker   booking.Masker
	patch    booking.Patch

	requestTimeout time.Duration
	secureCookies  bool
	builtAt        time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var addr string
	flag.StringVar(&addr, "addr", ":"+cfg.Server.Port, "HTTP listen address")
	flag.StringVar(&templatesDir, "templates", cfg.Paths.Templates, "templates directory")
	flag.StringVar(&publicDir, "public", cfg.Paths.Public, "public assets directory")
	flag.Parse()

	logger, err := observability.NewLogger(cfg.Telemetry.LogLevel, cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	devMode = cfg.Server.DevMode()
	if !devMode {
		// Parse templates once in production
		if _, err := tmplCache.load(); err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	a, err := newApp(cfg, logger, metrics)
	if err != nil {
		logger.Fatal("initialise site", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observability.Serve(ctx, cfg.Telemetry.MetricsAddr, metrics, logger)
	stopPatch := a.patch.Start(ctx)
	defer stopPatch()

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("web listening",
		zap.String("addr", addr),
		zap.Bool("dev_mode", devMode),
		zap.Strings("locales", cfg.Site.Locales),
		zap.String("widget_patch", a.patch.Name()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.Error(err))
	}
	logger.Info("web stopped")
}

// newApp loads the data stores and bundles and wires the composer.
// Invalid catalog or review data fails start-up.
func newApp(cfg config.Config, logger *zap.Logger, metrics *observability.Metrics) (*app, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	revs, err := reviews.Default(reviews.WithUnitCheck(cat.HasUnit))
	if err != nil {
		return nil, err
	}

	resolver, err := i18n.NewResolver(
		i18n.FSLoader{FS: os.DirFS(cfg.Paths.Locales)},
		cfg.Site.DefaultLocale,
		cfg.Site.Locales,
		i18n.WithMissingHook(func(locale, key string) {
			metrics.MissingTranslation(locale)
			logger.Warn("missing translation", zap.String("locale", locale), zap.String("key", key))
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := resolver.Preload(context.Background()); err != nil {
		return nil, err
	}

	bridge := booking.NewBridge(booking.Config{
		Host:           cfg.Booking.Host,
		AccountID:      cfg.Booking.AccountID,
		SearchWidgetID: cfg.Booking.SearchWidgetID,
		SearchScript:   cfg.Booking.SearchScript,
	})
	poller := booking.Poller{Delay: cfg.Widget.Delay, Interval: cfg.Widget.Interval, Ceiling: cfg.Widget.Ceiling}

	site := seo.Site{
		BaseURL:       cfg.Site.BaseURL,
		Name:          "Silver Pineapple",
		Locales:       cfg.Site.Locales,
		DefaultLocale: cfg.Site.DefaultLocale,
	}
	composer, err := pages.New(pages.Deps{
		Site: site,
		Business: seo.Business{
			Name:        site.Name,
			Description: "Boutique short-term rentals in Eau Gallie, Melbourne FL. Steps from the arts district, minutes to beaches.",
			Street:      "Eau Gallie Arts District",
			Locality:    "Melbourne",
			Region:      "FL",
			Country:     "US",
			PriceRange:  "$$",
		},
		Catalog:   cat,
		Reviews:   revs,
		Content:   cms.New(os.DirFS(cfg.Paths.Content), cfg.Site.DefaultLocale),
		Bridge:    bridge,
		Poller:    poller,
		Analytics: pages.Analytics{GA4MeasurementID: cfg.Telemetry.GAMeasurementID, Debug: cfg.Server.DevMode()},
		Contact:   pages.Footer{Email: contactEmail},
	})
	if err != nil {
		return nil, err
	}

	service := forms.NewService(
		forms.NewValidator(cat.HasUnit),
		forms.NewClient(cfg.Forms.SubmissionsURL, logger),
		forms.NewClient(cfg.Forms.NewsletterURL, logger),
		metrics,
		logger,
	)

	var patch booking.Patch = booking.NopPatch{}
	if cfg.Widget.Patch == config.PatchProbe {
		patch = booking.NewProbePatch(cfg.Booking.SearchScript, poller, logger, metrics)
	}

	return &app{
		logger:         logger,
		metrics:        metrics,
		resolver:       resolver,
		composer:       composer,
		forms:          service,
		limiter:        mw.NewRateLimiter(cfg.Forms.RatePerMinute),
		patch:          patch,
		requestTimeout: cfg.Server.RequestTimeout,
		secureCookies:  !cfg.Server.DevMode(),
		builtAt:        time.Now().UTC(),
	}, nil
}

func (a *app) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(a.logger, a.metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(a.requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "/assets"))
	r.Get("/sitemap.xml", a.SitemapHandler)
	r.Get("/robots.txt", a.RobotsHandler)
	r.Get("/manifest.webmanifest", a.ManifestHandler)

	redirect := mw.RedirectToLocale(a.resolver)
	r.Get("/", redirect)
	for _, p := range []string{"/rooms", "/rooms/{slug}", "/about", "/reviews", "/search"} {
		r.Get(p, redirect)
	}

	r.Route("/{locale}", func(r chi.Router) {
		r.Use(mw.Locale(a.resolver, a.metrics, http.HandlerFunc(a.NotFoundHandler), http.HandlerFunc(a.ErrorHandler)))
		r.Use(mw.CSRF(a.secureCookies))
		r.Use(mw.VaryLocale)

		r.Get("/", a.HomeHandler)
		r.Get("/about", a.AboutHandler)
		r.Get("/rooms", a.RoomsHandler)
		r.Get("/rooms/{slug}", a.RoomHandler)
		r.Get("/reviews", a.ReviewsHandler)
		r.Get("/reviews/list", a.ReviewListHandler)
		r.Get("/search", a.SearchHandler)

		r.With(a.limiter.Limit(string(forms.KindReview), a.metrics)).Post("/reviews", a.ReviewSubmitHandler)
		r.With(a.limiter.Limit(string(forms.KindNewsletter), a.metrics)).Post("/newsletter", a.NewsletterHandler)
	})

	r.NotFound(a.routeNotFound)
	return r
}
