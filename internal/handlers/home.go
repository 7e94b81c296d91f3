package handlers

import (
	"context"
	"html/template"

	"hike.io/web/internal/seo"
)

// HomeData is the view model for the home page.
type HomeData struct {
	Layout
	Featured EntryView
	Popular  []EntryView
}

// Home builds the landing page: the featured entry and every other entry.
func (r *Resolver) Home(ctx context.Context, client Client) (HomeData, error) {
	set, err := r.iconSet(ctx, client)
	if err != nil {
		return HomeData{}, err
	}
	featured := r.catalog.Featured()
	popular := r.catalog.Popular()

	data := HomeData{
		Layout:   r.layout("hike.io - Beautiful Hikes", "/", client, set),
		Featured: r.entryView(featured),
		Popular:  make([]EntryView, 0, len(popular)),
	}
	for _, e := range popular {
		data.Popular = append(data.Popular, r.entryView(e))
	}
	data.SEO = seo.Meta{
		Title:       data.Title,
		Description: "Beautiful hikes, with photos, maps, distance and elevation gain.",
		Canonical:   r.absolute("/"),
		OG: seo.OpenGraph{
			Title: data.Title,
			Image: r.absolute(data.Featured.Cover),
			Type:  "website",
			URL:   r.absolute("/"),
		},
		JSONLD: []template.JS{seo.Script(seo.WebSite(siteName, r.absolute("/")))},
	}
	return data, nil
}
