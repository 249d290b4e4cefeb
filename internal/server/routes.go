package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Posts collection.
	mux.HandleFunc("GET /posts", s.handleListPosts)
	mux.HandleFunc("POST /posts", s.handleCreatePost)

	// Single post.
	mux.HandleFunc("GET /posts/{id}", s.handleGetPost)
	mux.HandleFunc("DELETE /posts/{id}", s.handleDeletePost)

	// Stored images.
	mux.HandleFunc("GET /uploads/{name}", s.handleUpload)

	// Frontend.
	mux.Handle("GET /", s.frontendHandler())

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
