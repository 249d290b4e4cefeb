package api

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// CreatePostRequest is the JSON form of a post creation without an image.
type CreatePostRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// DeleteResponse reports whether a delete removed a row.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
