package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"newspost/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "NEWSPOST_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the newspost API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListPosts returns all posts, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var resp []models.Post
	err := c.do(ctx, http.MethodGet, "/posts", nil, &resp)
	return resp, err
}

// GetPost returns one post.
func (c *Client) GetPost(ctx context.Context, id int64) (models.Post, error) {
	var resp models.Post
	err := c.do(ctx, http.MethodGet, "/posts/"+strconv.FormatInt(id, 10), nil, &resp)
	return resp, err
}

// DeletePost deletes a post and reports whether a row was removed.
func (c *Client) DeletePost(ctx context.Context, id int64) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/posts/"+strconv.FormatInt(id, 10), nil, &resp)
	return resp, err
}

// CreatePost uploads a post as multipart form data. imagePath may be empty.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest, imagePath string) (models.Post, error) {
	var resp models.Post

	var image io.Reader
	filename := ""
	if strings.TrimSpace(imagePath) != "" {
		f, err := os.Open(imagePath)
		if err != nil {
			return resp, err
		}
		defer f.Close()
		image = f
		filename = filepath.Base(imagePath)
	}

	body, contentType, err := encodePostForm(req, filename, image)
	if err != nil {
		return resp, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", body)
	if err != nil {
		return resp, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	err = c.send(httpReq, &resp)
	return resp, err
}

func encodePostForm(req CreatePostRequest, filename string, image io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("title", req.Title); err != nil {
		return nil, "", err
	}
	if req.Description != nil {
		if err := mw.WriteField("description", *req.Description); err != nil {
			return nil, "", err
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, image); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
