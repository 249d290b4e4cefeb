package store

import (
	"context"
	"fmt"
	"strings"

	"newspost/internal/models"
)

// PostStore abstracts post storage backends.
type PostStore interface {
	InsertPost(ctx context.Context, title string, description, image *string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) (bool, error)
	Close() error
}

var (
	_ PostStore = (*Store)(nil)
	_ PostStore = (*PGStore)(nil)
)

// OpenFromConfig opens Postgres when dbURL is a postgres URL and SQLite at dbPath otherwise.
func OpenFromConfig(ctx context.Context, dbPath, dbURL string) (PostStore, string, error) {
	dbURL = strings.TrimSpace(dbURL)
	if isPostgresURL(dbURL) {
		st, err := OpenPostgres(ctx, dbURL)
		if err != nil {
			return nil, "", err
		}
		return st, "postgres", nil
	}
	if dbURL != "" {
		return nil, "", fmt.Errorf("unsupported db url scheme: %s", redactURL(dbURL))
	}
	st, err := Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	return st, "sqlite", nil
}

func isPostgresURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

func redactURL(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return raw[:i+3] + "..."
	}
	return "..."
}
