package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestDir(t *testing.T) *LocalDir {
	t.Helper()
	dir, err := NewLocalDir(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	return dir
}

func TestNewLocalDirCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	dir, err := NewLocalDir(root)
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	info, err := os.Stat(dir.Root())
	if err != nil {
		t.Fatalf("stat root: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected root to be a directory")
	}

	if _, err := NewLocalDir(root); err != nil {
		t.Fatalf("second init should be a no-op: %v", err)
	}
	if _, err := NewLocalDir("  "); err == nil {
		t.Fatal("expected error for blank root")
	}
}

func TestLocalDirSaveOpenDelete(t *testing.T) {
	dir := newTestDir(t)
	dir.now = func() time.Time { return time.UnixMilli(1700000000123) }
	ctx := context.Background()

	res, err := dir.Save(ctx, bytes.NewBufferString("png bytes"), "photo.png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Name != "1700000000123.png" {
		t.Fatalf("expected name 1700000000123.png, got %q", res.Name)
	}
	if res.Path != "/uploads/1700000000123.png" {
		t.Fatalf("unexpected path %q", res.Path)
	}
	if res.SizeBytes != int64(len("png bytes")) {
		t.Fatalf("expected size %d, got %d", len("png bytes"), res.SizeBytes)
	}

	rc, err := dir.Open(ctx, res.Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png bytes" {
		t.Fatalf("expected original bytes, got %q", string(data))
	}

	if err := dir.Delete(ctx, res.Path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir.Root(), res.Name)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := dir.Delete(ctx, res.Path); err != nil {
		t.Fatalf("delete missing should be noop: %v", err)
	}
}

func TestLocalDirSameMillisecondGetsDistinctNames(t *testing.T) {
	dir := newTestDir(t)
	dir.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		res, err := dir.Save(ctx, strings.NewReader("x"), "a.jpg")
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if seen[res.Name] {
			t.Fatalf("duplicate name %q", res.Name)
		}
		seen[res.Name] = true
	}
	if !seen["1700000000000.jpg"] || !seen["1700000000004.jpg"] {
		t.Fatalf("expected consecutive millisecond names, got %v", seen)
	}
}

func TestLocalDirExtensionHandling(t *testing.T) {
	dir := newTestDir(t)
	dir.now = func() time.Time { return time.UnixMilli(42) }
	ctx := context.Background()

	tests := []struct {
		filename string
		wantName string
	}{
		{filename: "noext", wantName: "42"},
		{filename: "archive.tar.gz", wantName: "42.gz"},
		{filename: "../../etc/passwd.txt", wantName: "42.txt"},
		{filename: `C:\photos\cat.JPG`, wantName: "42.JPG"},
		{filename: "weird.p%g", wantName: "43"},
	}
	for _, tt := range tests {
		res, err := dir.Save(ctx, strings.NewReader("x"), tt.filename)
		if err != nil {
			t.Fatalf("save %q: %v", tt.filename, err)
		}
		if res.Name != tt.wantName {
			t.Fatalf("filename %q: expected %q, got %q", tt.filename, tt.wantName, res.Name)
		}
	}
}

func TestLocalDirRejectsInvalidPaths(t *testing.T) {
	dir := newTestDir(t)
	ctx := context.Background()

	for _, path := range []string{"", "uploads/a.png", "/uploads/", "/uploads/../secret", "/uploads/a/b.png", "/other/a.png"} {
		if err := dir.Delete(ctx, path); err == nil {
			t.Fatalf("expected delete(%q) to fail", path)
		}
		if _, err := dir.Open(ctx, path); err == nil {
			t.Fatalf("expected open(%q) to fail", path)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestLocalDirSaveFailureRemovesPartialFile(t *testing.T) {
	dir := newTestDir(t)
	ctx := context.Background()

	if _, err := dir.Save(ctx, failingReader{}, "x.png"); err == nil {
		t.Fatal("expected save error")
	}
	entries, err := os.ReadDir(dir.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files after failed save, got %d", len(entries))
	}
}

func TestLocalDirCanceledContext(t *testing.T) {
	dir := newTestDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := dir.Save(ctx, strings.NewReader("x"), "x.png"); err == nil {
		t.Fatal("expected canceled context error")
	}
}
