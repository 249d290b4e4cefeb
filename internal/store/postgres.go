package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newspost/internal/models"
)

const (
	pgMaxConns        = 10
	pgConnectTimeout  = 10 * time.Second
	pgMigrationLockID = 7_245_001
)

// pgMigrations is the ordered list of Postgres schema migrations.
var pgMigrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: posts table",
		SQL: `
CREATE TABLE IF NOT EXISTS posts (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  image TEXT,
  created TIMESTAMPTZ NOT NULL DEFAULT now()
);
`,
	},
	{
		Version:     2,
		Description: "index posts by created for newest-first listing",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_posts_created_desc ON posts(created DESC, id DESC);
`,
	},
}

// PGStore stores posts in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres connects to dsn and bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns <= 0 || cfg.MaxConns > pgMaxConns {
		cfg.MaxConns = pgMaxConns
	}
	cfg.ConnConfig.ConnectTimeout = pgConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runPGMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PGStore{pool: pool, now: time.Now}, nil
}

// Close releases all pooled connections.
func (s *PGStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// InsertPost inserts a post and returns the stored row.
func (s *PGStore) InsertPost(ctx context.Context, title string, description, image *string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO posts (title, description, image, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, description, image, created
	`, title, description, image, s.now().UTC().Truncate(time.Millisecond))
	post, err := scanPGPost(row)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("insert returned no row")
	}
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *PGStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, image, created
		FROM posts ORDER BY created DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPGPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a post by id, or nil when it does not exist.
func (s *PGStore) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, description, image, created
		FROM posts WHERE id = $1
	`, id)
	return scanPGPost(row)
}

// DeletePost removes a post by id and reports whether a row was removed.
func (s *PGStore) DeletePost(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanPGPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	var created time.Time
	if err := row.Scan(&post.ID, &post.Title, &post.Description, &post.Image, &created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	post.Created = created.UTC()
	return &post, nil
}

func runPGMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration conn: %w", err)
	}
	defer conn.Release()

	// Serialize concurrent starters against the same database.
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", pgMigrationLockID); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", pgMigrationLockID)
	}()

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := conn.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range sortedMigrations(pgMigrations) {
		if m.Version <= current {
			continue
		}
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
