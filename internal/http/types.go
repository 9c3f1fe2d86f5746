package http

// Response represents a standard API response structure
type Response struct {
	Success bool        `json:"success" msgpack:"success"`
	Message string      `json:"message,omitempty" msgpack:"message,omitempty"`
	Data    interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
	Error   *Error      `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Error represents the error structure in responses
type Error struct {
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
	Field   string `json:"field,omitempty" msgpack:"field,omitempty"`
}
