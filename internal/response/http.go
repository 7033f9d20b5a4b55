package response

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// PagedResponse is used by list endpoints that accept limit/offset.
type PagedResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
}
