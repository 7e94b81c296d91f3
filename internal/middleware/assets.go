package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
)

// AssetsWithCache serves files from dir for URL paths under prefix, with
// Cache-Control, Vary, and weak ETag handling. Only the prefix subtree is
// served. ETags are computed once when the handler is built; with dev set they
// are computed per request so edited files are picked up without a restart.
// Directories are never listed.
func AssetsWithCache(dir, prefix string, maxAge time.Duration, dev bool) http.Handler {
	prefix = "/" + strings.Trim(prefix, "/")
	fsys := os.DirFS(dir)
	var etags map[string]string
	if !dev {
		etags = precomputeETags(fsys, strings.TrimPrefix(prefix, "/"))
	}
	cacheControl := "public, max-age=" + strconv.Itoa(int(maxAge.Seconds())) + ", stale-while-revalidate=86400"
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaned := path.Clean("/" + r.URL.Path)
		if !strings.HasPrefix(cleaned, prefix+"/") {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimPrefix(cleaned, "/")
		if info, err := fs.Stat(fsys, name); err != nil || info.IsDir() || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", cacheControl)

		var et string
		if dev {
			et, _ = fileETag(fsys, name)
		} else {
			et = etags[name]
		}
		if et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func precomputeETags(fsys fs.FS, root string) map[string]string {
	etags := map[string]string{}
	_ = fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if et, err := fileETag(fsys, p); err == nil {
			etags[p] = et
		}
		return nil
	})
	return etags
}

func fileETag(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
