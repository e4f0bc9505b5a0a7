package types

// APIResponse is the JSON envelope of every API response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta carries response metadata.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Total     int    `json:"total,omitempty"`
}
