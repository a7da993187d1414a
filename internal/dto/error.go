package dto

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	StatusCode int            `json:"statusCode" example:"404"`
	Name       string         `json:"name" example:"NotFoundError"`
	Message    string         `json:"message" example:"todo not found"`
	Code       string         `json:"code" example:"NOT_FOUND"`
	Details    map[string]any `json:"details,omitempty"`
}
