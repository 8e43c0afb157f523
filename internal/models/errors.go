package models

import "fmt"

// AppError is a structured application error with a stable code.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches AppErrors by code, so errors.Is(err, &AppError{Code: CodeNoData}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Error codes.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeMissingCode   = "MISSING_CODE"
	CodeNoData        = "NO_DATA"
)

// Error constructors.
var (
	ErrInvalidConfig = func(field, msg string) *AppError {
		return &AppError{Code: CodeInvalidConfig, Message: msg, Field: field}
	}
	ErrMissingCode = func(code int) *AppError {
		return &AppError{Code: CodeMissingCode, Message: fmt.Sprintf("code %d not found in data", code)}
	}
	ErrNoData = &AppError{Code: CodeNoData, Message: "no DAC codes in data"}
)
