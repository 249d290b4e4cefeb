package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"newspost/internal/blobstore"
	"newspost/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 60 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	defaultMaxUploadBytes     int64 = 20 << 20 // 20 MiB
	defaultMultipartMaxMemory int64 = 8 << 20  // 8 MiB
)

// Options tunes optional server behavior.
type Options struct {
	// PublicDir serves the frontend from disk instead of the embedded bundle.
	PublicDir          string
	MaxUploadBytes     int64
	MultipartMaxMemory int64
	Metrics            *Metrics
}

// Server wraps HTTP handlers for the newspost API.
type Server struct {
	addr               string
	store              store.PostStore
	blobs              blobstore.BlobStore
	service            *PostService
	metrics            *Metrics
	logger             *slog.Logger
	publicDir          string
	maxUploadBytes     int64
	multipartMaxMemory int64
}

// New creates a new server instance.
func New(addr string, postStore store.PostStore, blobs blobstore.BlobStore, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	multipartMemory := opts.MultipartMaxMemory
	if multipartMemory <= 0 {
		multipartMemory = defaultMultipartMaxMemory
	}

	return &Server{
		addr:               addr,
		store:              postStore,
		blobs:              blobs,
		service:            NewPostService(postStore, blobs, metrics),
		metrics:            metrics,
		logger:             logger,
		publicDir:          strings.TrimSpace(opts.PublicDir),
		maxUploadBytes:     maxUpload,
		multipartMaxMemory: multipartMemory,
	}
}

// Handler returns the routed handler wrapped in CORS, request id and logging middleware.
func (s *Server) Handler() http.Handler {
	return withCORS(withRequestID(s.withRequestLogging(s.routes())))
}

// ListenAndServe serves until ctx is canceled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log().Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().Info("starting server", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
