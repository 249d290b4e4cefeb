package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	maxNameAttempts = 64
	maxExtLength    = 16
)

// LocalDir stores uploads as flat files named <epoch-millis><ext>.
type LocalDir struct {
	root string
	now  func() time.Time
}

// NewLocalDir creates a LocalDir rooted at root, creating the directory if absent.
func NewLocalDir(root string) (*LocalDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalDir{root: abs, now: time.Now}, nil
}

// Root returns the absolute directory holding uploads.
func (d *LocalDir) Root() string {
	if d == nil {
		return ""
	}
	return d.root
}

// Save writes r under a generated name and returns its /uploads/ path.
// If the millisecond name is taken, the next free millisecond is used.
func (d *LocalDir) Save(ctx context.Context, r io.Reader, originalFilename string) (SaveResult, error) {
	var zero SaveResult
	if d == nil {
		return zero, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	ext := safeExt(originalFilename)
	millis := d.now().UnixMilli()

	var (
		f    *os.File
		name string
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = strconv.FormatInt(millis+int64(attempt), 10) + ext
		var err error
		f, err = os.OpenFile(filepath.Join(d.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return zero, err
		}
		f = nil
	}
	if f == nil {
		return zero, fmt.Errorf("unable to allocate upload name after %d attempts", maxNameAttempts)
	}

	dst := f.Name()
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return zero, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return zero, err
	}

	return SaveResult{Name: name, Path: PathPrefix + name, SizeBytes: n}, nil
}

// Open returns a reader for a previously saved /uploads/ path.
func (d *LocalDir) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.fileFromPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes the file at path. Missing files are ignored.
func (d *LocalDir) Delete(ctx context.Context, path string) error {
	if d == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := d.fileFromPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// NameFromPath extracts the file name from an /uploads/<name> path.
func NameFromPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, PathPrefix) {
		return "", fmt.Errorf("upload path must start with %s", PathPrefix)
	}
	name := strings.TrimPrefix(path, PathPrefix)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid upload path")
	}
	return name, nil
}

func (d *LocalDir) fileFromPath(path string) (string, error) {
	name, err := NameFromPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, name), nil
}

func safeExt(filename string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	ext := filepath.Ext(base)
	if ext == "." || len(ext) > maxExtLength {
		return ""
	}
	for _, ch := range ext[min(1, len(ext)):] {
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if !isAlnum {
			return ""
		}
	}
	return ext
}
