package handlers

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"hike.io/web/internal/catalog"
	"hike.io/web/internal/format"
	"hike.io/web/internal/icons"
	"hike.io/web/internal/observability"
	"hike.io/web/internal/seo"
)

const siteName = "hike.io"

// Icon resources, relative to the public directory.
const (
	iconLocation  = "images/icons/location.svg"
	iconDistance  = "images/icons/distance.svg"
	iconElevation = "images/icons/elevation.svg"
	iconMap       = "images/icons/map.svg"
)

// IconRenderer renders an icon reference for a client.
type IconRenderer interface {
	Render(path string, vector bool, attrs ...icons.Attr) (template.HTML, error)
}

// Site carries deployment-specific URLs surfaced to templates.
type Site struct {
	BaseURL       string // absolute origin used for canonical links
	ImageDir      string // site imagery, e.g. "/images"
	EntryImageDir string // trail photos; differs between development and production
	Analytics     Analytics
}

// Client is the capability classification of the requesting browser.
type Client struct {
	VectorIcons bool
	IPhone      bool
}

// Layout holds the fields shared by every page template.
type Layout struct {
	Title  string
	Path   string
	SEO    seo.Meta
	Site   Site
	Client Client
	Icons  IconSet
}

// IconSet is the resolved icon markup used by entry cards and details.
type IconSet struct {
	Location  template.HTML
	Distance  template.HTML
	Elevation template.HTML
	Map       template.HTML
}

// EntryView is the presentation form of a catalog entry.
type EntryView struct {
	ID        string
	URL       string
	Name      string
	Location  string
	Distance  string
	Elevation string
	Summary   template.HTML
	Cover     string
	Pictures  []PictureView
	Map       MapView
}

// PictureView is a trail photo with its resolved URL.
type PictureView struct {
	ID  string
	URL string
}

// MapView locates the trail.
type MapView struct {
	Latitude  float64
	Longitude float64
	Href      string
}

// EntryData is the view model for an entry detail page.
type EntryData struct {
	Layout
	Entry EntryView
}

// Resolver builds page view models from the catalog.
type Resolver struct {
	catalog *catalog.Catalog
	icons   IconRenderer
	site    Site
}

// NewResolver wires a Resolver. The catalog is shared read-only between
// requests.
func NewResolver(cat *catalog.Catalog, renderer IconRenderer, site Site) *Resolver {
	return &Resolver{catalog: cat, icons: renderer, site: site}
}

// Entry builds the detail page for id. It returns catalog.ErrNotFound when
// the catalog has no such entry.
func (r *Resolver) Entry(ctx context.Context, id string, client Client) (EntryData, error) {
	e, err := r.catalog.Find(id)
	if err != nil {
		return EntryData{}, err
	}
	set, err := r.iconSet(ctx, client)
	if err != nil {
		return EntryData{}, err
	}
	view := r.entryView(e)

	images := make([]string, 0, len(view.Pictures))
	for _, p := range view.Pictures {
		images = append(images, r.absolute(p.URL))
	}
	canonical := r.absolute(view.URL)
	description := fmt.Sprintf("%s in %s: %s, %s", e.Name, e.Location, view.Distance, view.Elevation)

	data := EntryData{
		Layout: r.layout(e.Name, view.URL, client, set),
		Entry:  view,
	}
	data.SEO = seo.Meta{
		Title:       e.Name + " - " + siteName,
		Description: description,
		Canonical:   canonical,
		OG: seo.OpenGraph{
			Title:       e.Name,
			Description: description,
			Image:       r.absolute(view.Cover),
			Type:        "article",
			URL:         canonical,
		},
		JSONLD: []template.JS{
			seo.Script(seo.TouristAttraction(seo.Place{
				Name:      e.Name,
				URL:       canonical,
				Address:   e.Location,
				Latitude:  e.Map.Latitude,
				Longitude: e.Map.Longitude,
				MapURL:    e.Map.Href,
				Images:    images,
			})),
			seo.Script(seo.BreadcrumbList([]seo.BreadcrumbItem{
				{Name: siteName, Item: r.absolute("/")},
				{Name: e.Name, Item: canonical},
			})),
		},
	}
	return data, nil
}

// NotFound builds the layout for the not-found page. Icons are not resolved.
func (r *Resolver) NotFound(path string, client Client) Layout {
	l := r.layout("Not found", path, client, IconSet{})
	l.SEO = seo.Meta{Title: "Not found - " + siteName}
	return l
}

func (r *Resolver) layout(title, path string, client Client, set IconSet) Layout {
	return Layout{
		Title:  title,
		Path:   path,
		Site:   r.site,
		Client: client,
		Icons:  set,
	}
}

func (r *Resolver) entryView(e catalog.Entry) EntryView {
	pictures := make([]PictureView, 0, len(e.Pictures))
	for _, p := range e.Pictures {
		pictures = append(pictures, PictureView{
			ID:  p.ID,
			URL: r.pictureURL(e.ID, p.ID),
		})
	}
	view := EntryView{
		ID:        e.ID,
		URL:       "/" + e.ID,
		Name:      e.Name,
		Location:  e.Location,
		Distance:  format.Distance(e.Distance),
		Elevation: format.Elevation(e.ElevationGain),
		Summary:   format.Markdown(e.Summary),
		Pictures:  pictures,
		Map: MapView{
			Latitude:  e.Map.Latitude,
			Longitude: e.Map.Longitude,
			Href:      e.Map.Href,
		},
	}
	if len(pictures) > 0 {
		view.Cover = pictures[0].URL
	}
	return view
}

// pictureURL follows the "<entry image dir>/<entry>/<picture>.jpg" convention.
func (r *Resolver) pictureURL(entryID, pictureID string) string {
	return r.site.EntryImageDir + "/" + entryID + "/" + pictureID + ".jpg"
}

// absolute turns a site-relative path into an absolute URL. Paths that
// already carry a scheme are returned unchanged.
func (r *Resolver) absolute(p string) string {
	if !strings.HasPrefix(p, "/") {
		return p
	}
	return r.site.BaseURL + p
}

func (r *Resolver) iconSet(ctx context.Context, client Client) (IconSet, error) {
	var (
		set IconSet
		err error
	)
	render := func(path, name string) template.HTML {
		if err != nil {
			return ""
		}
		var out template.HTML
		out, err = r.icons.Render(path, client.VectorIcons,
			icons.Attr{Name: "class", Value: "icon icon-" + name},
			icons.Attr{Name: "aria-hidden", Value: "true"},
		)
		return out
	}
	set.Location = render(iconLocation, "location")
	set.Distance = render(iconDistance, "distance")
	set.Elevation = render(iconElevation, "elevation")
	set.Map = render(iconMap, "map")
	if err != nil {
		return IconSet{}, fmt.Errorf("render icons: %w", err)
	}
	observability.FromContext(ctx).Debug("icons resolved", zap.Bool("vector", client.VectorIcons))
	return set, nil
}
