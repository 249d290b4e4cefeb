package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"newspost/internal/models"
)

const selectPostColumns = `SELECT id, title, description, image, created FROM posts`

// InsertPost inserts a post and returns the stored row.
func (s *Store) InsertPost(ctx context.Context, title string, description, image *string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (title, description, image, created) VALUES (?, ?, ?, ?)`,
		title,
		nullString(description),
		nullString(image),
		models.FormatTime(s.now()),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d not found after insert", id)
	}
	return post, nil
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, selectPostColumns+` ORDER BY created DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
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
func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, selectPostColumns+` WHERE id = ?`, id)
	return scanPost(row)
}

// DeletePost removes a post by id and reports whether a row was removed.
func (s *Store) DeletePost(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanPost(scanner interface {
	Scan(dest ...any) error
}) (*models.Post, error) {
	var post models.Post
	var description, image sql.NullString
	var created string

	if err := scanner.Scan(&post.ID, &post.Title, &description, &image, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if description.Valid {
		value := description.String
		post.Description = &value
	}
	if image.Valid {
		value := image.String
		post.Image = &value
	}
	parsed, err := models.ParseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parse created for post %d: %w", post.ID, err)
	}
	post.Created = parsed
	return &post, nil
}

func nullString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
