package serrors

import "fmt"

// BaseError is a structured error carrying a stable machine-readable code
// alongside a human-readable message.
type BaseError struct {
	Code    string
	Message string
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func NewErrorf(code, format string, args ...any) *BaseError {
	return &BaseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewFieldRequiredError(field string) *BaseError {
	return &BaseError{
		Code:    "FIELD_REQUIRED",
		Message: fmt.Sprintf("field %q is required", field),
	}
}

// ValidationErrors maps field names to their validation failures.
type ValidationErrors map[string]*BaseError
