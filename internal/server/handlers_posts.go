package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"newspost/internal/api"
	"newspost/internal/blobstore"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.service.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	post, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := s.parseCreatePost(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	post, err := s.service.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

// handleDeletePost reports deleted=false for ids that cannot exist, including
// ones that are not integers.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		s.writeJSON(w, http.StatusOK, api.DeleteResponse{Deleted: false})
		return
	}
	resp, err := s.service.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// parseCreatePost accepts multipart (with an optional image), urlencoded or
// JSON bodies. The returned cleanup releases multipart temp files.
func (s *Server) parseCreatePost(w http.ResponseWriter, r *http.Request) (CreatePostInput, func(), error) {
	var input CreatePostInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
		if err := r.ParseMultipartForm(s.multipartMaxMemory); err != nil {
			return input, nil, classifyMultipartError(err)
		}
		cleanup := func() { _ = r.MultipartForm.RemoveAll() }

		input.Title = r.FormValue("title")
		if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
			input.Description = &values[0]
		}

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return input, cleanup, classifyMultipartError(err)
		default:
			prev := cleanup
			cleanup = func() {
				_ = file.Close()
				prev()
			}
			input.Image = &UploadedFile{Filename: header.Filename, Content: file}
		}
		return input, cleanup, nil

	case "application/json":
		var req api.CreatePostRequest
		r.Body = http.MaxBytesReader(w, r.Body, defaultJSONMaxBody)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return input, nil, classifyDecodeJSONError(err)
		}
		input.Title = req.Title
		input.Description = req.Description
		return input, nil, nil

	default:
		r.Body = http.MaxBytesReader(w, r.Body, defaultJSONMaxBody)
		if err := r.ParseForm(); err != nil {
			return input, nil, classifyMultipartError(err)
		}
		input.Title = r.PostFormValue("title")
		if _, ok := r.PostForm["description"]; ok {
			description := r.PostFormValue("description")
			input.Description = &description
		}
		return input, nil, nil
	}
}

// handleUpload streams a stored image. Directory listings are never served.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		http.NotFound(w, r)
		return
	}
	name := r.PathValue("name")
	rc, err := s.blobs.Open(r.Context(), blobstore.PathPrefix+name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("upload not found"), ErrCodeUploadNotFound))
			return
		}
		if _, nameErr := blobstore.NameFromPath(blobstore.PathPrefix + name); nameErr != nil {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(nameErr, ErrCodeUploadNotFound))
			return
		}
		s.metrics.blobFailed("open")
		s.writeServiceError(w, r, blobFailure(err))
		return
	}
	defer rc.Close()

	if f, ok := rc.(*os.File); ok {
		info, statErr := f.Stat()
		if statErr == nil && info.IsDir() {
			http.NotFound(w, r)
			return
		}
		modTime := time.Time{}
		if statErr == nil {
			modTime = info.ModTime()
		}
		http.ServeContent(w, r, name, modTime, f)
		return
	}

	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log().Debug("stream upload", "name", name, "error", err)
	}
}
