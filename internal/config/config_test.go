package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.DBPath != "news.db" {
		t.Fatalf("expected default db path news.db, got %q", cfg.DBPath)
	}
	if cfg.UploadsDir != "uploads" {
		t.Fatalf("expected default uploads dir, got %q", cfg.UploadsDir)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Uploads.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Fatalf("expected max upload default %d, got %d", DefaultMaxUploadBytes, cfg.Uploads.MaxUploadBytes)
	}
	if cfg.Uploads.MultipartMaxMemory != DefaultMultipartMaxMemory {
		t.Fatalf("expected multipart default %d, got %d", DefaultMultipartMaxMemory, cfg.Uploads.MultipartMaxMemory)
	}
}

func TestListenAddrAndBaseURL(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != ":3000" {
		t.Fatalf("expected :3000, got %q", got)
	}
	if got := cfg.BaseURL(); got != "http://127.0.0.1:3000" {
		t.Fatalf("expected loopback base url, got %q", got)
	}

	cfg.Host = "localhost"
	cfg.Port = 8080
	if got := cfg.ListenAddr(); got != "localhost:8080" {
		t.Fatalf("expected localhost:8080, got %q", got)
	}

	cfg.APIURL = "http://news.internal:9000/"
	if got := cfg.BaseURL(); got != "http://news.internal:9000" {
		t.Fatalf("expected api_url without trailing slash, got %q", got)
	}
}

func TestLoadFileIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".newspost.toml")
	if err := os.WriteFile(path, []byte(`port = 4000
db_path = "/var/lib/newspost/news.db"
log_level = "warn"

[uploads]
max_upload_bytes = 1024
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	loaded, err := loadFileIfExists(path, &cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded {
		t.Fatal("expected file to be loaded")
	}
	if cfg.Port != 4000 {
		t.Fatalf("expected port 4000, got %d", cfg.Port)
	}
	if cfg.DBPath != "/var/lib/newspost/news.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log_level warn, got %q", cfg.LogLevel)
	}
	if cfg.Uploads.MaxUploadBytes != 1024 {
		t.Fatalf("expected max upload 1024, got %d", cfg.Uploads.MaxUploadBytes)
	}
	if cfg.Uploads.MultipartMaxMemory != DefaultMultipartMaxMemory {
		t.Fatalf("expected multipart default preserved, got %d", cfg.Uploads.MultipartMaxMemory)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	loaded, err := loadFileIfExists("/nonexistent/path/.newspost.toml", &cfg)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if loaded {
		t.Fatal("expected loaded=false for missing file")
	}
	if cfg.Port != DefaultPort {
		t.Fatal("defaults should be preserved")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".newspost.toml")
	if err := os.WriteFile(path, []byte("port = \"nope"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := Default()
	if _, err := loadFileIfExists(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "NEWSPOST_API_URL", "NEWSPOST_DB", "NEWSPOST_DB_URL", "DATABASE_URL",
		"NEWSPOST_UPLOADS_DIR", "NEWSPOST_PUBLIC_DIR", "NEWSPOST_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOST", "")
	os.Unsetenv("HOST")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("NEWSPOST_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())

	if err := os.WriteFile(filepath.Join(dir, ".newspost.toml"), []byte(`port = 4000
uploads_dir = "/srv/uploads"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "5000")
	t.Setenv("NEWSPOST_DB", "/tmp/other.db")
	t.Setenv("NEWSPOST_DB_URL", "postgres://u@h/db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Fatalf("expected env port 5000, got %d", cfg.Port)
	}
	if cfg.UploadsDir != "/srv/uploads" {
		t.Fatalf("expected file uploads dir, got %q", cfg.UploadsDir)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.DBURL != "postgres://u@h/db" {
		t.Fatalf("expected env db url, got %q", cfg.DBURL)
	}
	if cfg.LoadedPath != filepath.Join(dir, ".newspost.toml") {
		t.Fatalf("expected loaded path to be recorded, got %q", cfg.LoadedPath)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSPOST_CONFIG_DIR", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "http")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "invalid PORT") {
		t.Fatalf("expected invalid PORT error, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSPOST_CONFIG_DIR", t.TempDir())
	work := t.TempDir()
	t.Chdir(work)

	if err := os.WriteFile(filepath.Join(work, ".env"), []byte("PORT=7000\nNEWSPOST_UPLOADS_DIR=/from/dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "6000")
	// godotenv only fills variables that are absent, not ones set to "".
	os.Unsetenv("NEWSPOST_UPLOADS_DIR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 6000 {
		t.Fatalf("expected process env to win, got %d", cfg.Port)
	}
	if cfg.UploadsDir != "/from/dotenv" {
		t.Fatalf("expected .env value, got %q", cfg.UploadsDir)
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range AllowedKeys() {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	for _, key := range []string{"", "project_prefix", "uploads", "uploads.gc_batch_size"} {
		if IsAllowedKey(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestGet(t *testing.T) {
	cfg := Default()
	cfg.PublicDir = "./public"

	tests := map[string]string{
		"port":                         "3000",
		"db_path":                      "news.db",
		"public_dir":                   "./public",
		"uploads.max_upload_bytes":     "20971520",
		"uploads.multipart_max_memory": "8388608",
	}
	for key, want := range tests {
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if got != want {
			t.Fatalf("get %s: expected %q, got %q", key, want, got)
		}
	}
	if _, err := cfg.Get("bogus"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSetKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", ".newspost.toml")

	if err := SetKey(path, "port", "8081"); err != nil {
		t.Fatalf("set port: %v", err)
	}
	if err := SetKey(path, "uploads.max_upload_bytes", "4096"); err != nil {
		t.Fatalf("set nested: %v", err)
	}
	if err := SetKey(path, "public_dir", "./public"); err != nil {
		t.Fatalf("set public_dir: %v", err)
	}

	cfg := Default()
	if _, err := loadFileIfExists(path, &cfg); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Port != 8081 {
		t.Fatalf("expected port 8081, got %d", cfg.Port)
	}
	if cfg.Uploads.MaxUploadBytes != 4096 {
		t.Fatalf("expected max upload 4096, got %d", cfg.Uploads.MaxUploadBytes)
	}
	if cfg.PublicDir != "./public" {
		t.Fatalf("expected public_dir ./public, got %q", cfg.PublicDir)
	}
}

func TestSetKeyRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".newspost.toml")

	t.Run("unknown key", func(t *testing.T) {
		if err := SetKey(path, "nope", "1"); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("bad port", func(t *testing.T) {
		if err := SetKey(path, "port", "99999"); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("non-positive size", func(t *testing.T) {
		if err := SetKey(path, "uploads.multipart_max_memory", "0"); err == nil {
			t.Fatal("expected error")
		}
	})
}
