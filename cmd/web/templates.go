package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hike.io/web/internal/handlers"
)

// entryStats feeds the "entry-stats" partial.
type entryStats struct {
	handlers.EntryView
	Icons handlers.IconSet
}

// templates parses every *.tmpl file under dir. In dev mode templates are
// reparsed on each render so edits show up without a restart.
type templates struct {
	dir string
	dev bool

	mu    sync.RWMutex
	cache *template.Template
}

func newTemplates(dir string, dev bool) (*templates, error) {
	t := &templates{dir: dir, dev: dev}
	tc, err := t.parse()
	if err != nil {
		return nil, err
	}
	t.cache = tc
	return t, nil
}

func (t *templates) parse() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"stats": func(set handlers.IconSet, e handlers.EntryView) entryStats {
			return entryStats{EntryView: e, Icons: set}
		},
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(t.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", t.dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func (t *templates) current() (*template.Template, error) {
	if t.dev {
		tc, err := t.parse()
		if err != nil {
			return nil, fmt.Errorf("template parse error: %w", err)
		}
		t.mu.Lock()
		t.cache = tc
		t.mu.Unlock()
		return tc, nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.cache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return t.cache, nil
}

// render executes the named page template into a buffer and writes it with
// status. Nothing is written when execution fails.
func (t *templates) render(w http.ResponseWriter, status int, name string, data any) error {
	tc, err := t.current()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tc.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("template exec error: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
