package server

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed uiassets/dist/*
var uiFS embed.FS

func embeddedUI() (fs.FS, error) {
	return fs.Sub(uiFS, "uiassets/dist")
}

// frontendHandler serves public_dir when configured, otherwise the embedded bundle.
func (s *Server) frontendHandler() http.Handler {
	var root fs.FS
	if s.publicDir != "" {
		root = os.DirFS(s.publicDir)
	} else {
		dist, err := embeddedUI()
		if err != nil {
			return http.NotFoundHandler()
		}
		root = dist
	}

	fileServer := http.FileServerFS(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			s.serveIndex(w, r, root)
			return
		}
		// No directory listings.
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		asset := strings.TrimPrefix(r.URL.Path, "/")
		if isFingerprintAsset(asset) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, root fs.FS) {
	index, err := fs.ReadFile(root, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(index)
	}
}

func isFingerprintAsset(assetPath string) bool {
	base := path.Base(strings.TrimSpace(assetPath))
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, ch := range hash {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}
