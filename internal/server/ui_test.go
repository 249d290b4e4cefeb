package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedFrontend(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("root serves index", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
			t.Fatalf("expected html content type, got %q", got)
		}
		if got := w.Header().Get("Cache-Control"); got != "no-cache" {
			t.Fatalf("expected no-cache for index, got %q", got)
		}
		if !strings.Contains(strings.ToLower(w.Body.String()), "<!doctype html>") {
			t.Fatalf("expected html document, got %q", w.Body.String())
		}
	})

	t.Run("assets referenced by index are served", func(t *testing.T) {
		for _, asset := range []string{"/app.js", "/style.css"} {
			w := serve(h, httptest.NewRequest(http.MethodGet, asset, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 for %s, got %d", asset, w.Code)
			}
			if strings.TrimSpace(w.Body.String()) == "" {
				t.Fatalf("expected non-empty body for %s", asset)
			}
		}
	})

	t.Run("unknown asset is 404", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestPublicDirFrontend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<!doctype html><title>custom</title>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "logo.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	srv, _ := newTestServerWithOptions(t, Options{PublicDir: dir})
	h := srv.Handler()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "custom") {
		t.Fatalf("expected custom index, got %d (%s)", w.Code, w.Body.String())
	}

	w = serve(h, httptest.NewRequest(http.MethodGet, "/img/logo.svg", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for asset, got %d", w.Code)
	}

	w = serve(h, httptest.NewRequest(http.MethodGet, "/img/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected directory listing to be refused, got %d", w.Code)
	}
}

func TestIsFingerprintAsset(t *testing.T) {
	tests := map[string]bool{
		"app.js":                false,
		"app.1a2b3c4d.js":       true,
		"assets/x.deadbeef.css": true,
		"app.short.js":          false,
		"app.zzzzzzzz.js":       false,
	}
	for asset, want := range tests {
		if got := isFingerprintAsset(asset); got != want {
			t.Fatalf("isFingerprintAsset(%q) = %v, want %v", asset, got, want)
		}
	}
}
