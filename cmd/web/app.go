package main

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"hike.io/web/internal/catalog"
	"hike.io/web/internal/handlers"
	mw "hike.io/web/internal/middleware"
	"hike.io/web/internal/observability"
)

const assetMaxAge = 7 * 24 * time.Hour

// application holds the process-wide, read-only collaborators of the HTTP
// handlers.
type application struct {
	pages     *handlers.Resolver
	templates *templates
	logger    *zap.Logger
	publicDir string
	devMode   bool
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.Capability)
	r.Use(mw.Logger(app.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets; bundles under /css and /js are produced by the asset pipeline.
	static := []string{"/images", "/css", "/js"}
	if app.devMode {
		// Production serves trail photos from the asset host.
		static = append(static, "/hike-images")
	}
	for _, prefix := range static {
		r.Handle(prefix+"/*", mw.AssetsWithCache(filepath.Clean(app.publicDir), prefix, assetMaxAge, app.devMode))
	}

	r.Get("/", app.home)
	r.Get("/{entryID}", app.entry)
	r.NotFound(app.notFound)
	return r
}

// home renders the landing page.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data, err := app.pages.Home(r.Context(), mw.ClientFromContext(r.Context()))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "home", data)
}

// entry renders a trail detail page. Unknown trails and clients that do not
// accept HTML get the not-found page.
func (app *application) entry(w http.ResponseWriter, r *http.Request) {
	if !acceptsHTML(r.Header.Get("Accept")) {
		app.notFound(w, r)
		return
	}
	data, err := app.pages.Entry(r.Context(), chi.URLParam(r, "entryID"), mw.ClientFromContext(r.Context()))
	if errors.Is(err, catalog.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "entry", data)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	data := app.pages.NotFound(r.URL.Path, mw.ClientFromContext(r.Context()))
	app.render(w, r, http.StatusNotFound, "notfound", data)
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := app.templates.render(w, status, name, data); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("render page", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// acceptsHTML reports whether an Accept header admits text/html. An absent
// header accepts anything. The most specific matching range decides, so an
// explicit "text/html;q=0" is not overridden by "*/*".
func acceptsHTML(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	best, q := 0, 0.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		var specificity int
		switch mediaType {
		case "text/html":
			specificity = 3
		case "text/*":
			specificity = 2
		case "*/*":
			specificity = 1
		default:
			continue
		}
		weight := 1.0
		if v, ok := params["q"]; ok {
			if weight, err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				continue
			}
		}
		if specificity > best {
			best, q = specificity, weight
		}
	}
	return best > 0 && q > 0
}
