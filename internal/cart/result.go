package cart

import (
	"github.com/01moynul/storefront-golang/internal/apperr"
)

// Result is the uniform shape every cart mutation answers with, on success
// and on failure alike.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Ok builds a successful Result.
func Ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail builds a failed Result carrying the user-facing error text.
func Fail(err error) Result {
	return Result{Success: false, Error: apperr.Message(err)}
}
