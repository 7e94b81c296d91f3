package seo

import "html/template"

// OpenGraph holds the og:* properties of a page.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
}

// Meta is the per-page head metadata: title, description, canonical link,
// OpenGraph properties and JSON-LD scripts.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	JSONLD      []template.JS
}
