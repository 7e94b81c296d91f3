// Package icons renders icon references either as inline SVG markup or as a
// PNG fallback image for clients that cannot display SVG.
//
// SVG resources are expected to be normalized ahead of time so that they are
// safe to inline. The PNG fallback for "images/icons/map.svg" is expected at
// "images/icons/map.png".
package icons

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

const rasterExt = ".png"

var (
	// ErrResourceNotFound is returned when an icon resource cannot be read.
	ErrResourceNotFound = errors.New("icons: resource not found")
	// ErrNoRootElement is returned when an icon resource has no start tag to
	// merge attributes into.
	ErrNoRootElement = errors.New("icons: no root element")
)

// Attr is a single attribute merged into the root tag of rendered markup.
type Attr struct {
	Name  string
	Value string
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithoutCache makes the resolver re-read resources on every render.
func WithoutCache() Option {
	return func(r *Resolver) {
		r.cache = false
	}
}

// WithRasterPrefix sets the URL prefix used for fallback image sources.
// Defaults to "/".
func WithRasterPrefix(prefix string) Option {
	return func(r *Resolver) {
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		r.rasterPrefix = prefix
	}
}

// Resolver renders icons from resources stored in fsys. It is safe for
// concurrent use.
type Resolver struct {
	fsys         fs.FS
	cache        bool
	rasterPrefix string

	mu    sync.RWMutex
	items map[string][]byte
	group singleflight.Group
}

// NewResolver builds a Resolver reading resources from fsys, typically the
// public assets directory.
func NewResolver(fsys fs.FS, opts ...Option) *Resolver {
	r := &Resolver{
		fsys:         fsys,
		cache:        true,
		rasterPrefix: "/",
		items:        map[string][]byte{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns markup for the icon at p. When vector is true the SVG file
// is returned verbatim; otherwise an <img> tag referencing the PNG sibling is
// returned. attrs are added to the root tag right after the tag name, and
// replace existing attributes of the same name.
func (r *Resolver) Render(p string, vector bool, attrs ...Attr) (template.HTML, error) {
	name, err := resourceName(p)
	if err != nil {
		return "", err
	}
	if !vector {
		return r.raster(name, attrs), nil
	}
	markup, err := r.read(name)
	if err != nil {
		return "", err
	}
	if len(attrs) == 0 {
		return template.HTML(markup), nil
	}
	merged, err := mergeRootAttrs(markup, attrs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, name)
	}
	return template.HTML(merged), nil
}

// RasterPath returns the fallback image path for a vector resource path.
func RasterPath(p string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + rasterExt
}

func (r *Resolver) raster(name string, attrs []Attr) template.HTML {
	tok := html.Token{
		Type: html.StartTagToken,
		Data: "img",
		Attr: mergeAttrs([]html.Attribute{{Key: "src", Val: r.rasterPrefix + RasterPath(name)}}, attrs),
	}
	return template.HTML(tok.String())
}

func (r *Resolver) read(name string) ([]byte, error) {
	if !r.cache {
		return r.load(name)
	}
	r.mu.RLock()
	b, ok := r.items[name]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}
	v, err, _ := r.group.Do(name, func() (any, error) {
		b, err := r.load(name)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.items[name] = b
		r.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (r *Resolver) load(name string) ([]byte, error) {
	b, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceNotFound, err)
	}
	return b, nil
}

// resourceName converts a URL-ish path ("/images/icons/map.svg") into an
// fs.FS name ("images/icons/map.svg").
func resourceName(p string) (string, error) {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: invalid path %q", ErrResourceNotFound, p)
	}
	return name, nil
}

// mergeRootAttrs inserts attrs into the first start tag of markup, right
// after the tag name. Existing attributes with the same name are cut out;
// everything else, including attribute case and quoting, is kept byte for
// byte.
func mergeRootAttrs(markup []byte, attrs []Attr) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(markup))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return nil, ErrNoRootElement
		}
		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			offset += len(raw)
			continue
		}
		var out bytes.Buffer
		out.Grow(len(markup) + 16*len(attrs))
		out.Write(markup[:offset])
		spliceAttrs(&out, raw, attrs)
		out.Write(markup[offset+len(raw):])
		return out.Bytes(), nil
	}
}

// spliceAttrs writes the raw start tag with attrs inserted after the tag name.
func spliceAttrs(out *bytes.Buffer, raw []byte, attrs []Attr) {
	nameEnd := 1
	for nameEnd < len(raw) && !isSpace(raw[nameEnd]) && raw[nameEnd] != '/' && raw[nameEnd] != '>' {
		nameEnd++
	}
	out.Write(raw[:nameEnd])

	extra := mergeAttrs(nil, attrs)
	replaced := make(map[string]struct{}, len(extra))
	for _, a := range extra {
		replaced[strings.ToLower(a.Key)] = struct{}{}
		out.WriteByte(' ')
		out.WriteString(a.Key)
		out.WriteString(`="`)
		out.WriteString(html.EscapeString(a.Val))
		out.WriteByte('"')
	}

	pos := nameEnd
	for _, span := range attrSpans(raw, nameEnd) {
		if _, ok := replaced[strings.ToLower(span.name)]; !ok {
			continue
		}
		out.Write(raw[pos:span.start])
		pos = span.end
	}
	out.Write(raw[pos:])
}

// attrSpan is an attribute of a raw start tag. start includes the whitespace
// before the name, so cutting [start, end) leaves a well-formed tag.
type attrSpan struct {
	name       string
	start, end int
}

func attrSpans(raw []byte, i int) []attrSpan {
	var spans []attrSpan
	for i < len(raw) {
		start := i
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		if raw[i] == '/' {
			i++
			continue
		}
		nameStart := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '/' && raw[i] != '>' {
			i++
		}
		if i == nameStart {
			i++
			continue
		}
		name := string(raw[nameStart:i])

		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				if k := bytes.IndexByte(raw[j+1:], raw[j]); k >= 0 {
					j += k + 2
				} else {
					j = len(raw)
				}
			default:
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
			}
			i = j
		}
		spans = append(spans, attrSpan{name: name, start: start, end: i})
	}
	return spans
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// mergeAttrs puts extra first, in order, followed by the existing attributes
// that extra does not override. Names compare case-insensitively.
func mergeAttrs(existing []html.Attribute, extra []Attr) []html.Attribute {
	out := make([]html.Attribute, 0, len(existing)+len(extra))
	seen := make(map[string]int, len(extra))
	for _, a := range extra {
		if a.Name == "" {
			continue
		}
		key := strings.ToLower(a.Name)
		if i, ok := seen[key]; ok {
			out[i].Val = a.Value
			continue
		}
		seen[key] = len(out)
		out = append(out, html.Attribute{Key: a.Name, Val: a.Value})
	}
	for _, a := range existing {
		if _, ok := seen[strings.ToLower(a.Key)]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}
