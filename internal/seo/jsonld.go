package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script marshals v for embedding inside <script type="application/ld+json">.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Place describes a trail as a schema.org TouristAttraction with coordinates.
type Place struct {
	Name      string
	URL       string
	Address   string
	Latitude  float64
	Longitude float64
	MapURL    string
	Images    []string
}

// TouristAttraction returns the schema payload for p.
func TouristAttraction(p Place) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "TouristAttraction",
		"name":     p.Name,
		"geo": map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  p.Latitude,
			"longitude": p.Longitude,
		},
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if p.Address != "" {
		m["address"] = p.Address
	}
	if p.MapURL != "" {
		m["hasMap"] = p.MapURL
	}
	if len(p.Images) > 0 {
		m["image"] = p.Images
	}
	return m
}
