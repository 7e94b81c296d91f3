package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hike.io/web/internal/catalog"
	"hike.io/web/internal/config"
)

const (
	modernUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	legacyUA = "Mozilla/4.0 (compatible; MSIE 7.0; Windows NT 6.0)"
)

func testConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	values := map[string]string{
		"HIKE_WEB_TEMPLATES_DIR": "../../templates",
		"HIKE_WEB_PUBLIC_DIR":    "../../public",
		"HIKE_WEB_BASE_URL":      "https://hike.io",
	}
	for k, v := range env {
		values[k] = v
	}
	cfg, err := config.Load(config.WithEnvMap(values), config.WithoutSystemEnv(), config.WithEnvFile(""))
	require.NoError(t, err)
	return cfg
}

// newTestRouter builds the same handler tree as serve.
func newTestRouter(t *testing.T, env map[string]string) http.Handler {
	t.Helper()
	app, err := newApplication(testConfig(t, env), zap.NewNop())
	require.NoError(t, err)
	return app.routes()
}

func get(t *testing.T, srv http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestHomeRendersFeaturedAndPopular(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/", map[string]string{"User-Agent": modernUA})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Header().Values("Vary"), "User-Agent")

	doc := document(t, rec)
	require.Equal(t, "hike.io - Beautiful Hikes", doc.Find("title").Text())

	featured := doc.Find("[data-featured-entry]")
	require.Equal(t, 1, featured.Length())
	require.Equal(t, "scotchmans-peak", featured.AttrOr("data-featured-entry", ""))
	require.Equal(t, "Scotchman's Peak", featured.Find("h1").Text())
	require.Equal(t, "6.2 mi.", featured.Find("[data-distance] span").Text())
	require.Equal(t, "+3281 ft.", featured.Find("[data-elevation] span").Text())
	require.Equal(t, "/hike-images/scotchmans-peak/scotchmans-peak-trees.jpg", featured.Find("img.featured-cover").AttrOr("src", ""))

	cards := doc.Find(".popular-entries [data-entry]")
	require.Equal(t, 6, cards.Length())
	require.Equal(t, "king-arthurs-seat", cards.First().AttrOr("data-entry", ""))
	require.Equal(t, "mt-kilamanjaro", cards.Last().AttrOr("data-entry", ""))
	require.Equal(t, 0, doc.Find(`.popular-entries [data-entry="scotchmans-peak"]`).Length())

	require.Equal(t, 1, featured.Find("svg.icon-distance").Length(), "modern browsers get inline svg")
	require.Equal(t, 0, doc.Find("img.icon").Length())
}

func TestHomeLegacyBrowserGetsRasterIcons(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/", map[string]string{"User-Agent": legacyUA})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := document(t, rec)
	require.Equal(t, 0, doc.Find("svg").Length())
	icon := doc.Find("[data-featured-entry] img.icon-distance")
	require.Equal(t, 1, icon.Length())
	require.Equal(t, "/images/icons/distance.png", icon.AttrOr("src", ""))
	require.Equal(t, "true", icon.AttrOr("aria-hidden", ""))
	require.True(t, doc.Find("body").HasClass("no-svg"))
}

func TestEntryPageRenders(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/snoqualmie-middle-fork", map[string]string{
		"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := document(t, rec)
	require.Equal(t, "Snoqualmie Middle Fork - hike.io", doc.Find("title").Text())
	article := doc.Find(`article[data-entry="snoqualmie-middle-fork"]`)
	require.Equal(t, 1, article.Length())
	require.Equal(t, "6.8 mi.", article.Find("[data-distance] span").Text())
	require.Equal(t, "+14278 ft.", article.Find("[data-elevation] span").Text())
	require.Equal(t, "Washington, USA", article.Find(".entry-location span").Text())
	require.Equal(t, 9, article.Find("[data-picture]").Length())
	require.Equal(t, "/hike-images/snoqualmie-middle-fork/scotchmans-peak-trees.jpg",
		article.Find("[data-picture] img").First().AttrOr("src", ""))

	mapLink := article.Find(".entry-map a")
	require.True(t, strings.HasPrefix(mapLink.AttrOr("href", ""), "https://maps.google.com/maps?q="))
	require.Equal(t, 1, mapLink.Find("svg.icon-map").Length())
	require.Equal(t, "48.177534", article.Find(".entry-map").AttrOr("data-lat", ""))

	require.True(t, doc.Find("body").HasClass("iphone"))
	require.Equal(t, "https://hike.io/snoqualmie-middle-fork", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, 2, doc.Find(`script[type="application/ld+json"]`).Length())
}

func TestEntrySummaryRendered(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/scotchmans-peak", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	require.Equal(t, "mountain goats", doc.Find(".entry-summary strong").Text())
}

func TestUnknownEntryIsNotFound(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/nonexistent-trail", map[string]string{"User-Agent": modernUA})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := document(t, rec)
	require.Equal(t, "Trail not found", doc.Find(".not-found h1").Text())
	require.Equal(t, "/nonexistent-trail", doc.Find(".not-found code").Text())
}

func TestEntryRequiresHTML(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/lake-22", map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, srv, "/lake-22", map[string]string{"Accept": "text/html;q=0, application/json"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeepPathIsNotFound(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/lake-22/photos", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/images/icons/map.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<svg")
	require.NotEmpty(t, rec.Header().Get("ETag"))

	rec = get(t, srv, "/images/icons/map.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = get(t, srv, "/images/icons/", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotContains(t, rec.Body.String(), "map.png")
}

func TestProductionImagesFromAssetHost(t *testing.T) {
	srv := newTestRouter(t, map[string]string{"HIKE_WEB_ENV": "production"})

	rec := get(t, srv, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	require.Equal(t, "http://assets.hike.io/hike-images/scotchmans-peak/scotchmans-peak-trees.jpg",
		doc.Find("img.featured-cover").AttrOr("src", ""))

	rec = get(t, srv, "/hike-images/.gitkeep", nil)
	require.Equal(t, http.StatusNotFound, rec.Code, "trail photos are not served locally in production")
}

func TestMissingIconIsServerError(t *testing.T) {
	public := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(public, "images", "icons"), 0o755))
	app, err := newApplication(testConfig(t, map[string]string{"HIKE_WEB_PUBLIC_DIR": public}), zap.NewNop())
	require.NoError(t, err)
	srv := app.routes()

	rec := get(t, srv, "/lake-22", map[string]string{"User-Agent": modernUA})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = get(t, srv, "/lake-22", map[string]string{"User-Agent": legacyUA})
	require.Equal(t, http.StatusOK, rec.Code, "raster fallback does not read the svg resource")
}

func TestEmptyCatalogFailsStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries: []\n"), 0o600))

	_, err := newApplication(testConfig(t, map[string]string{"HIKE_WEB_CATALOG_FILE": path}), zap.NewNop())
	require.ErrorIs(t, err, catalog.ErrEmptyCatalog)
}

func TestAcceptsHTML(t *testing.T) {
	cases := map[string]bool{
		"":                              true,
		"*/*":                           true,
		"text/html":                     true,
		"text/*;q=0.5":                  true,
		"application/json":              false,
		"text/html;q=0":                 false,
		"application/json, */*;q=0.1":   true,
		"image/webp,image/apng,image/*": false,
		"text/html;level=1, text/plain": true,
		"text/html;q=0, */*":            false,
		"*/*, text/html;q=0.000":        false,
		"text/*;q=0, text/html":         true,
		"*/*;q=0.0":                     false,
		"text/html;q=high":              false,
		"text/html;q=0.001":             true,
	}
	for accept, want := range cases {
		require.Equal(t, want, acceptsHTML(accept), "accept %q", accept)
	}
}

func TestPrintCatalog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printCatalog(&buf, cat))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	require.True(t, strings.HasPrefix(lines[0], "ID"))
	require.Contains(t, lines[1], "scotchmans-peak *")
	require.Contains(t, lines[1], "6.2 mi.")
	require.Contains(t, lines[1], "+3281 ft.")
	require.Contains(t, lines[7], "31.1 mi.")
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--addr", ":9999", "--catalog", "trails.yaml"}))

	cfg := testConfig(t, nil)
	flags := serveFlags{addr: ":9999", catalogFile: "trails.yaml"}
	applyServeFlags(cmd, &cfg, flags)

	require.Equal(t, ":9999", cfg.Server.Addr)
	require.Equal(t, "trails.yaml", cfg.Paths.CatalogFile)
	require.Equal(t, "../../templates", cfg.Paths.Templates, "unchanged flags keep configured values")
}
