package server

import (
	"context"
	"fmt"
	"io"
	"strings"

	"newspost/internal/api"
	"newspost/internal/blobstore"
	"newspost/internal/models"
	"newspost/internal/store"
)

// UploadedFile is an image received with a create request.
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

// CreatePostInput describes a post creation request.
type CreatePostInput struct {
	Title       string
	Description *string
	Image       *UploadedFile
}

// PostService orchestrates post workflows across the store and the blob store.
type PostService struct {
	store   store.PostStore
	blobs   blobstore.BlobStore
	metrics *Metrics
}

// NewPostService constructs a PostService.
func NewPostService(postStore store.PostStore, blobs blobstore.BlobStore, metrics *Metrics) *PostService {
	return &PostService{store: postStore, blobs: blobs, metrics: metrics}
}

// Create validates the title, saves the image if any, then inserts the row.
// A blob saved before a failed insert is left on disk.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (models.Post, error) {
	var zero models.Post
	if s == nil || s.store == nil {
		return zero, internalError(fmt.Errorf("post service is not configured"))
	}

	// Title and description are stored exactly as received.
	if strings.TrimSpace(in.Title) == "" {
		return zero, badRequestCode(fmt.Errorf("title is required"), ErrCodeMissingRequired)
	}

	var image *string
	if in.Image != nil && in.Image.Content != nil {
		if s.blobs == nil {
			return zero, blobFailure(fmt.Errorf("uploads are not configured"))
		}
		saved, err := s.blobs.Save(ctx, in.Image.Content, in.Image.Filename)
		if err != nil {
			s.metrics.blobFailed("save")
			return zero, blobFailure(err)
		}
		s.metrics.blobWritten(saved.SizeBytes)
		image = &saved.Path
	}

	post, err := s.store.InsertPost(ctx, in.Title, in.Description, image)
	if err != nil {
		return zero, storeFailure(err)
	}
	s.metrics.postCreated()
	return *post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	if s == nil || s.store == nil {
		return nil, internalError(fmt.Errorf("post service is not configured"))
	}
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Get returns one post or a not-found error.
func (s *PostService) Get(ctx context.Context, id int64) (models.Post, error) {
	var zero models.Post
	if s == nil || s.store == nil {
		return zero, internalError(fmt.Errorf("post service is not configured"))
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return zero, storeFailure(err)
	}
	if post == nil {
		return zero, notFoundCode(fmt.Errorf("post not found"), ErrCodePostNotFound)
	}
	return *post, nil
}

// Delete removes the post's image, then the row. A missing id is not an error:
// the result reports deleted=false.
func (s *PostService) Delete(ctx context.Context, id int64) (api.DeleteResponse, error) {
	var zero api.DeleteResponse
	if s == nil || s.store == nil {
		return zero, internalError(fmt.Errorf("post service is not configured"))
	}

	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return zero, storeFailure(err)
	}
	if post != nil && post.HasImage() {
		if s.blobs == nil {
			return zero, blobFailure(fmt.Errorf("uploads are not configured"))
		}
		if err := s.blobs.Delete(ctx, *post.Image); err != nil {
			s.metrics.blobFailed("delete")
			return zero, blobFailure(err)
		}
	}

	deleted, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return zero, storeFailure(err)
	}
	if deleted {
		s.metrics.postDeleted()
	}
	return api.DeleteResponse{Deleted: deleted}, nil
}
